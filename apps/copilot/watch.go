package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/bridge"
	"github.com/trezcool/campuscopilot/core/campus"
)

// watch prints a line per remote snapshot until interrupted, or for the given duration.
func (cli *commandLine) watch(ctx context.Context, args []string) error {
	fs := cli.flagSet("watch")
	collection := fs.String("collection", core.EventsCollection, "events, assignments or notifications.")
	duration := fs.Duration("for", 0, "Stop after this long (0 waits for Ctrl+C).")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if cli.bridge == nil {
		return errNoRemote
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	snapshots := make(chan string, 1)
	report := func(line string) {
		select {
		case snapshots <- line:
		case <-ctx.Done():
		}
	}

	var (
		unsubscribe func()
		err         error
	)
	switch *collection {
	case core.EventsCollection:
		unsubscribe, err = bridge.SubscribeTo(cli.bridge, *collection, func(events []campus.Event) {
			report(fmt.Sprintf("%d events, %d upcoming", len(events), len(campus.Upcoming(events, 0))))
		})
	case core.AssignmentsCollection:
		unsubscribe, err = bridge.SubscribeTo(cli.bridge, *collection, func(assignments []campus.Assignment) {
			report(fmt.Sprintf("%d assignments, %d pending", len(assignments), len(campus.Pending(assignments))))
		})
	case core.NotificationsCollection:
		unsubscribe, err = bridge.SubscribeTo(cli.bridge, *collection, func(notifications []campus.Notification) {
			latest := ""
			if recent := campus.Recent(notifications, 1); len(recent) > 0 {
				latest = fmt.Sprintf(", latest: %s", recent[0].Title)
			}
			report(fmt.Sprintf("%d notifications%s", len(notifications), latest))
		})
	default:
		fs.Usage()
		return errHelp
	}
	if err != nil {
		return err
	}
	defer unsubscribe()

	fmt.Fprintf(cli.out, "Watching %s...\n", *collection)
	for {
		select {
		case line := <-snapshots:
			fmt.Fprintf(cli.out, "[%s] %s\n", nowFunc().Format(time.Kitchen), line)
		case <-ctx.Done():
			return nil
		}
	}
}
