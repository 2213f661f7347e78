package main

import (
	"context"
	"fmt"

	"github.com/trezcool/campuscopilot/core/campus"
)

func (cli *commandLine) events(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := cli.flagSet("events " + act)

	switch act {
	case "list":
		upcoming := fs.Int("upcoming", -1, "Only show the next N upcoming events (0 for all of them).")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		events := cli.svc.Events(ctx)
		if *upcoming >= 0 {
			events = campus.Upcoming(events, *upcoming)
		}
		printEvents(cli.out, events)
		return nil

	case "add":
		title := fs.String("title", "", "Title.")
		description := fs.String("description", "", "Description.")
		start := fs.String("start", "", "Start, e.g. \"2025-06-02 14:00\" (local time).")
		end := fs.String("end", "", "End, e.g. \"2025-06-02 16:00\" (local time).")
		location := fs.String("location", "", "Location.")
		typ := fs.String("type", string(campus.EventGeneral), "One of class, exam, club, deadline, event.")
		priority := fs.String("priority", string(campus.PriorityMedium), "One of low, medium, high.")
		audience := fs.String("audience", string(campus.AudienceAll), "One of all, specific_department, specific_year.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		startDate, err := optionalTime(*start)
		if err != nil {
			return err
		}
		endDate, err := optionalTime(*end)
		if err != nil {
			return err
		}
		evt, err := cli.svc.CreateEvent(ctx, campus.NewEvent{
			Title:          *title,
			Description:    *description,
			StartDate:      startDate,
			EndDate:        endDate,
			Location:       *location,
			Type:           campus.EventType(*typ),
			Priority:       campus.Priority(*priority),
			TargetAudience: campus.TargetAudience(*audience),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created event %s\n", evt.ID)
		return nil

	case "complete", "reopen", "delete":
		id := fs.String("id", "", "Event ID.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if act == "delete" {
			if err := cli.svc.DeleteEvent(ctx, *id); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Deleted event %s\n", *id)
			return nil
		}
		evt, err := cli.svc.SetEventCompleted(ctx, *id, act == "complete")
		if err != nil {
			return err
		}
		printEvents(cli.out, []campus.Event{evt})
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) assignments(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := cli.flagSet("assignments " + act)

	switch act {
	case "list":
		pending := fs.Bool("pending", false, "Only show pending assignments, earliest due first.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		assignments := cli.svc.Assignments(ctx)
		if *pending {
			assignments = campus.Pending(assignments)
		}
		printAssignments(cli.out, assignments)
		return nil

	case "add":
		title := fs.String("title", "", "Title.")
		description := fs.String("description", "", "Description.")
		subject := fs.String("subject", "", "Subject.")
		due := fs.String("due", "", "Due date, e.g. \"2025-06-09 23:59\" (local time).")
		priority := fs.String("priority", string(campus.PriorityMedium), "One of low, medium, high.")
		audience := fs.String("audience", string(campus.AudienceAll), "One of all, specific_department, specific_year.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		dueDate, err := optionalTime(*due)
		if err != nil {
			return err
		}
		a, err := cli.svc.CreateAssignment(ctx, campus.NewAssignment{
			Title:          *title,
			Description:    *description,
			Subject:        *subject,
			DueDate:        dueDate,
			Priority:       campus.Priority(*priority),
			TargetAudience: campus.TargetAudience(*audience),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created assignment %s\n", a.ID)
		return nil

	case "complete", "reopen":
		id := fs.String("id", "", "Assignment ID.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		a, err := cli.svc.SetAssignmentCompleted(ctx, *id, act == "complete")
		if err != nil {
			return err
		}
		printAssignments(cli.out, []campus.Assignment{a})
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) notifications(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := cli.flagSet("notifications " + act)

	switch act {
	case "list":
		unread := fs.Bool("unread", false, "Only show unread notifications.")
		typ := fs.String("type", "", "Only show this type: reminder, update, event or assignment.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		var notifications []campus.Notification
		if *unread {
			notifications = campus.Recent(cli.svc.UnreadNotifications(ctx, campus.NotificationType(*typ)), 0)
		} else {
			for _, n := range cli.svc.Notifications(ctx) {
				if *typ == "" || n.Type == campus.NotificationType(*typ) {
					notifications = append(notifications, n)
				}
			}
		}
		printNotifications(cli.out, notifications)
		return nil

	case "send":
		title := fs.String("title", "", "Title.")
		message := fs.String("message", "", "Message.")
		typ := fs.String("type", string(campus.NotificationUpdate), "One of reminder, update, event, assignment.")
		audience := fs.String("audience", string(campus.AudienceAll), "One of all, specific_department, specific_year.")
		related := fs.String("related", "", "ID of the related event or assignment.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		n, err := cli.svc.SendNotification(ctx, campus.NewNotification{
			Title:          *title,
			Message:        *message,
			Type:           campus.NotificationType(*typ),
			TargetAudience: campus.TargetAudience(*audience),
			RelatedID:      *related,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Sent notification %s\n", n.ID)
		return nil

	case "read-all":
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		n, err := cli.svc.MarkAllNotificationsRead(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Marked %d notifications as read\n", n)
		return nil

	case "read", "delete":
		id := fs.String("id", "", "Notification ID.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		if act == "read" {
			return cli.svc.MarkNotificationRead(ctx, *id)
		}
		if err := cli.svc.DeleteNotification(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Deleted notification %s\n", *id)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) clubs(ctx context.Context, args []string) error {
	act, args := action(args, "list")
	fs := cli.flagSet("clubs " + act)

	switch act {
	case "list":
		mine := fs.Bool("mine", false, "Only show the clubs you are a member of.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		clubs := cli.svc.Clubs(ctx)
		if *mine {
			clubs = cli.svc.MyClubs(ctx)
		}
		printClubs(cli.out, clubs)
		return nil

	case "create":
		name := fs.String("name", "", "Name.")
		description := fs.String("description", "", "Description.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		club, err := cli.svc.CreateClub(ctx, campus.NewClub{Name: *name, Description: *description})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Created club %s\n", club.ID)
		return nil

	case "join", "leave":
		id := fs.String("id", "", "Club ID.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		if *id == "" {
			fs.Usage()
			return errHelp
		}
		var (
			club campus.Club
			err  error
		)
		if act == "join" {
			club, err = cli.svc.JoinClub(ctx, *id)
		} else {
			club, err = cli.svc.LeaveClub(ctx, *id)
		}
		if err != nil {
			return err
		}
		printClubs(cli.out, []campus.Club{club})
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) settingsCmd(ctx context.Context, args []string) error {
	act, args := action(args, "show")
	fs := cli.flagSet("settings " + act)

	switch act {
	case "show":
		if err := parseFlags(fs, args); err != nil {
			return err
		}
		printSettings(cli.out, cli.svc.Settings(ctx))
		return nil

	case "set":
		notifications := fs.Bool("notifications", true, "Enable notifications.")
		darkMode := fs.Bool("darkmode", false, "Enable dark mode.")
		autoSync := fs.Bool("autosync", true, "Sync automatically.")
		reminder := fs.Int("reminder", 30, "Reminder, in minutes before an event: 5, 15, 30, 60 or 1440.")
		language := fs.String("language", "English", "English or Spanish.")
		if err := parseFlags(fs, args); err != nil {
			return err
		}

		var us campus.UpdateSettings
		set := setFlags(fs)
		if set["notifications"] {
			us.Notifications = notifications
		}
		if set["darkmode"] {
			us.DarkMode = darkMode
		}
		if set["autosync"] {
			us.AutoSync = autoSync
		}
		if set["reminder"] {
			us.ReminderTime = reminder
		}
		if set["language"] {
			us.Language = language
		}
		settings, err := cli.svc.UpdateSettings(ctx, us)
		if err != nil {
			return err
		}
		printSettings(cli.out, settings)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	dash, err := cli.svc.Dashboard(ctx)
	if err != nil {
		return err
	}
	usr := cli.session.CurrentUser(ctx)

	source := "this device"
	if dash.Remote {
		source = "remote"
	}
	fmt.Fprintf(cli.out, "Welcome back, %s!\n\n", usr.Name)
	fmt.Fprintf(cli.out, "Events:        %d (%s)\n", dash.TotalEvents, source)
	fmt.Fprintf(cli.out, "Assignments:   %d (%s), %d pending\n", dash.TotalAssignments, source, dash.PendingAssignments)
	fmt.Fprintf(cli.out, "Notifications: %d unread\n", dash.UnreadNotifications)
	fmt.Fprintf(cli.out, "My clubs:      %d\n", dash.MyClubs)

	fmt.Fprintln(cli.out, "\nUpcoming events")
	printEvents(cli.out, dash.UpcomingEvents)
	fmt.Fprintln(cli.out, "\nRecent notifications")
	printNotifications(cli.out, dash.RecentNotifications)
	return nil
}
