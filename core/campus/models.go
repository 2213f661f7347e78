package campus

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// CurrentUserID is the member/creator placeholder used by records created on this device.
const CurrentUserID = "current-user"

type EventType string

const (
	EventClass    EventType = "class"
	EventExam     EventType = "exam"
	EventClub     EventType = "club"
	EventDeadline EventType = "deadline"
	EventGeneral  EventType = "event"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type NotificationType string

const (
	NotificationReminder   NotificationType = "reminder"
	NotificationUpdate     NotificationType = "update"
	NotificationEvent      NotificationType = "event"
	NotificationAssignment NotificationType = "assignment"
)

type TargetAudience string

const (
	AudienceAll                TargetAudience = "all"
	AudienceSpecificDepartment TargetAudience = "specific_department"
	AudienceSpecificYear       TargetAudience = "specific_year"
)

type Event struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	StartDate      time.Time      `json:"startDate"`
	EndDate        time.Time      `json:"endDate"`
	Location       string         `json:"location,omitempty"`
	Type           EventType      `json:"type"`
	Priority       Priority       `json:"priority"`
	IsCompleted    bool           `json:"isCompleted"`
	CreatedBy      string         `json:"createdBy"`
	TargetAudience TargetAudience `json:"targetAudience,omitempty"`
}

type Assignment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	DueDate     time.Time `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	IsCompleted bool      `json:"isCompleted"`
	SubmittedAt null.Time `json:"submittedAt"`
	CreatedBy   string    `json:"createdBy"`
}

type Notification struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Timestamp      time.Time        `json:"timestamp"`
	IsRead         bool             `json:"isRead"`
	SentBy         string           `json:"sentBy,omitempty"`
	TargetAudience TargetAudience   `json:"targetAudience,omitempty"`
	RelatedID      string           `json:"relatedId,omitempty"`
}

type Club struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
	IsMember    bool     `json:"isMember"`
	AdminID     string   `json:"adminId"`
	Events      []Event  `json:"events"`
}

// Settings are the per-device preferences.
type Settings struct {
	Notifications bool   `json:"notifications"`
	DarkMode      bool   `json:"darkMode"`
	AutoSync      bool   `json:"autoSync"`
	ReminderTime  int    `json:"reminderTime"` // minutes before an event
	Language      string `json:"language"`
}

// Rehydration normalizes every date to UTC after decoding a cached blob.

func (e Event) Rehydrate() Event {
	e.StartDate = e.StartDate.UTC()
	e.EndDate = e.EndDate.UTC()
	return e
}

func (a Assignment) Rehydrate() Assignment {
	a.DueDate = a.DueDate.UTC()
	if a.SubmittedAt.Valid {
		a.SubmittedAt.Time = a.SubmittedAt.Time.UTC()
	}
	return a
}

func (n Notification) Rehydrate() Notification {
	n.Timestamp = n.Timestamp.UTC()
	return n
}

func (c Club) Rehydrate() Club {
	if c.Members == nil {
		c.Members = []string{}
	}
	if c.Events == nil {
		c.Events = []Event{}
	}
	for i := range c.Events {
		c.Events[i] = c.Events[i].Rehydrate()
	}
	return c
}

// HasMember reports whether id is in the club's member list.
func (c Club) HasMember(id string) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}
