package campus

import (
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

var NowFunc = time.Now // mockable

const dateLayout = "Jan 02, 2006"

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RelativeDate renders t as Today, Tomorrow, Yesterday or "Jan 02, 2006",
// in the local calendar of NowFunc.
func RelativeDate(t time.Time) string {
	now := NowFunc()
	t = t.In(now.Location())
	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return t.Format(dateLayout)
}

// TimeAgo renders how long ago t was, e.g. "3 hours ago".
func TimeAgo(t time.Time) string {
	now := NowFunc()
	if now.Sub(t) < time.Minute {
		return "Just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// DaysUntil is the number of started days between now and t, negative when t has passed.
func DaysUntil(t time.Time) int {
	return int(math.Ceil(t.Sub(NowFunc()).Hours() / 24))
}

func IsOverdue(t time.Time) bool {
	return NowFunc().After(t)
}

// Upcoming returns the events that are not completed and have not started yet, soonest first.
// limit <= 0 means no limit.
func Upcoming(events []Event, limit int) []Event {
	now := NowFunc()
	upcoming := make([]Event, 0, len(events))
	for _, evt := range events {
		if !evt.IsCompleted && evt.StartDate.After(now) {
			upcoming = append(upcoming, evt)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// Pending returns the assignments that are not completed, earliest due first.
func Pending(assignments []Assignment) []Assignment {
	pending := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !a.IsCompleted {
			pending = append(pending, a)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].DueDate.Before(pending[j].DueDate)
	})
	return pending
}

// Recent returns the notifications newest first. limit <= 0 means no limit.
func Recent(notifications []Notification, limit int) []Notification {
	recent := make([]Notification, len(notifications))
	copy(recent, notifications)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}
