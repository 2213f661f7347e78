package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/trezcool/campuscopilot/core/campus"
	"github.com/trezcool/campuscopilot/core/user"
)

func newTable(out io.Writer, header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func check(done bool) string {
	if done {
		return "x"
	}
	return ""
}

func printEvents(out io.Writer, events []campus.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events")
		return
	}
	w := newTable(out, "ID", "TITLE", "WHEN", "TIME", "LOCATION", "TYPE", "PRIORITY", "DONE")
	for _, e := range events {
		start := e.StartDate.Local()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Title, campus.RelativeDate(e.StartDate), start.Format("15:04"),
			e.Location, e.Type, e.Priority, check(e.IsCompleted))
	}
	_ = w.Flush()
}

func dueLabel(a campus.Assignment) string {
	switch {
	case a.IsCompleted:
		return "submitted"
	case campus.IsOverdue(a.DueDate):
		return "overdue"
	}
	days := campus.DaysUntil(a.DueDate)
	if days == 1 {
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

func printAssignments(out io.Writer, assignments []campus.Assignment) {
	if len(assignments) == 0 {
		fmt.Fprintln(out, "No assignments")
		return
	}
	w := newTable(out, "ID", "TITLE", "SUBJECT", "DUE", "STATUS", "PRIORITY")
	for _, a := range assignments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Title, a.Subject, campus.RelativeDate(a.DueDate), dueLabel(a), a.Priority)
	}
	_ = w.Flush()
}

func printNotifications(out io.Writer, notifications []campus.Notification) {
	if len(notifications) == 0 {
		fmt.Fprintln(out, "No notifications")
		return
	}
	w := newTable(out, "ID", "", "TITLE", "MESSAGE", "TYPE", "SENT")
	for _, n := range notifications {
		unread := "*"
		if n.IsRead {
			unread = ""
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID, unread, n.Title, n.Message, n.Type, campus.TimeAgo(n.Timestamp))
	}
	_ = w.Flush()
}

func printClubs(out io.Writer, clubs []campus.Club) {
	if len(clubs) == 0 {
		fmt.Fprintln(out, "No clubs")
		return
	}
	w := newTable(out, "ID", "NAME", "MEMBERS", "MEMBER")
	for _, c := range clubs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.Name, len(c.Members), check(c.IsMember))
	}
	_ = w.Flush()
}

func printSettings(out io.Writer, s campus.Settings) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Notifications:\t%t\n", s.Notifications)
	fmt.Fprintf(w, "Dark mode:\t%t\n", s.DarkMode)
	fmt.Fprintf(w, "Auto sync:\t%t\n", s.AutoSync)
	fmt.Fprintf(w, "Reminder:\t%d minutes before\n", s.ReminderTime)
	fmt.Fprintf(w, "Language:\t%s\n", s.Language)
	_ = w.Flush()
}

func printUser(out io.Writer, u user.User) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	fmt.Fprintf(w, "College:\t%s\n", u.Institution)
	if u.IsStudent() {
		fmt.Fprintf(w, "Year:\t%d\n", u.Year)
		fmt.Fprintf(w, "Student ID:\t%s\n", u.StudentID)
	}
	if u.Department != "" {
		fmt.Fprintf(w, "Department:\t%s\n", u.Department)
	}
	_ = w.Flush()
}
