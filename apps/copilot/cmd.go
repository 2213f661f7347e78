package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/campuscopilot/core"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")

	errNotSignedIn  = core.E(core.KindAuth, "copilot", "not signed in")
	errLoginRefused = core.E(core.KindAuth, "copilot.login", "invalid email, password or role")
	errNoRemote     = core.E(core.KindNetwork, "copilot.watch", "no remote backend configured")
)

type commandLine struct {
	*app
	out io.Writer
}

func newCommandLine(a *app, out io.Writer) *commandLine {
	return &commandLine{app: a, out: out}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL [-role student|admin] | -demo student|admin - sign in (the password is prompted)")
	fmt.Fprintln(cli.out, "  register -name NAME -email EMAIL -college COLLEGE [...]          - create an account")
	fmt.Fprintln(cli.out, "  logout                                                          - sign out and clear local data")
	fmt.Fprintln(cli.out, "  whoami                                                          - show the signed-in user")
	fmt.Fprintln(cli.out, "  profile [-name NAME] [-college COLLEGE] [...]                    - edit your profile")
	fmt.Fprintln(cli.out, "  events [list|add|complete|reopen|delete]                        - manage events")
	fmt.Fprintln(cli.out, "  assignments [list|add|complete|reopen]                          - manage assignments")
	fmt.Fprintln(cli.out, "  notifications [list|send|read|read-all|delete]                  - manage notifications")
	fmt.Fprintln(cli.out, "  clubs [list|create|join|leave]                                  - manage clubs")
	fmt.Fprintln(cli.out, "  settings [show|set]                                             - show or change settings")
	fmt.Fprintln(cli.out, "  dashboard                                                       - show the overview")
	fmt.Fprintln(cli.out, "  watch [-collection NAME] [-for DURATION]                         - follow remote changes")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "register":
		return cli.register(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami(ctx)
	case "profile":
		return cli.profile(ctx, rest)
	case "settings":
		return cli.settingsCmd(ctx, rest)
	}

	// the campus commands need a signed-in user
	if cli.session.CurrentUser(ctx) == nil {
		switch cmd {
		case "events", "assignments", "notifications", "clubs", "dashboard", "watch":
			return errNotSignedIn
		}
	}
	switch cmd {
	case "events":
		return cli.events(ctx, rest)
	case "assignments":
		return cli.assignments(ctx, rest)
	case "notifications":
		return cli.notifications(ctx, rest)
	case "clubs":
		return cli.clubs(ctx, rest)
	case "dashboard":
		return cli.dashboard(ctx)
	case "watch":
		return cli.watch(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// describe renders err for the user, in the language of the settings.
func (cli *commandLine) describe(ctx context.Context, err error) string {
	msg := core.Localize(err, cli.settings.Get(ctx).Language)
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		for _, fld := range vErr.Fields {
			msg += fmt.Sprintf("\n  %s: %s", fld.Field, fld.Error)
		}
	}
	return msg
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

// action splits "events add -title X" into "add" and its flags. It defaults to def.
func action(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

// setFlags lists the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseTime reads a date given in local time, or with an explicit offset.
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, core.NewValidationError(
		fmt.Errorf("invalid date %q", value),
		core.FieldError{Field: "date", Error: fmt.Sprintf("%q is not a date like 2025-06-02 14:00", value)},
	)
}

// optionalTime parses value unless it is empty.
func optionalTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseTime(value)
}
