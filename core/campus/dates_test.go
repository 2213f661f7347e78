package campus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/campuscopilot/core/campus"
)

func TestRelativeDate(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "today", t: now.Add(5 * time.Hour), want: "Today"},
		{name: "tomorrow", t: now.Add(24 * time.Hour), want: "Tomorrow"},
		{name: "yesterday", t: now.Add(-24 * time.Hour), want: "Yesterday"},
		{name: "later", t: now.AddDate(0, 0, 10), want: "Jun 12, 2025"},
		{name: "earlier", t: now.AddDate(-1, 0, 0), want: "Jun 02, 2024"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, campus.RelativeDate(tc.t))
		})
	}
}

func TestTimeAgo(t *testing.T) {
	assert.Equal(t, "Just now", campus.TimeAgo(now.Add(-30*time.Second)))
	assert.Equal(t, "3 hours ago", campus.TimeAgo(now.Add(-3*time.Hour)))
	assert.Equal(t, "2 days ago", campus.TimeAgo(now.Add(-48*time.Hour)))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 2, campus.DaysUntil(now.Add(36*time.Hour)))
	assert.Equal(t, 1, campus.DaysUntil(now.Add(24*time.Hour)))
	assert.Equal(t, 0, campus.DaysUntil(now))
	assert.Equal(t, -1, campus.DaysUntil(now.Add(-36*time.Hour)))
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, campus.IsOverdue(now.Add(-time.Minute)))
	assert.False(t, campus.IsOverdue(now.Add(time.Minute)))
}

func TestUpcomingAndPending(t *testing.T) {
	events := campus.SeedEvents(now)
	events[0].IsCompleted = true
	events = append(events, campus.Event{ID: "past", StartDate: now.Add(-time.Hour)})

	upcoming := campus.Upcoming(events, 0)
	ids := make([]string, 0, len(upcoming))
	for _, evt := range upcoming {
		ids = append(ids, evt.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)
	assert.Len(t, campus.Upcoming(events, 1), 1)

	assignments := campus.SeedAssignments(now)
	assignments[1].IsCompleted = true
	pending := campus.Pending(assignments)
	if assert.Len(t, pending, 2) {
		assert.Equal(t, "1", pending[0].ID)
		assert.Equal(t, "3", pending[1].ID)
	}
}

func TestRecent(t *testing.T) {
	notifs := campus.SeedNotifications(now)
	notifs[0], notifs[2] = notifs[2], notifs[0]

	recent := campus.Recent(notifs, 2)
	if assert.Len(t, recent, 2) {
		assert.Equal(t, "1", recent[0].ID)
		assert.Equal(t, "2", recent[1].ID)
	}
	assert.Equal(t, "3", notifs[0].ID, "input is not reordered")
}
