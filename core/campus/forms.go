package campus

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/campuscopilot/core"
)

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title          string         `json:"title" validate:"required"`
	Description    string         `json:"description" validate:"required"`
	StartDate      time.Time      `json:"startDate" validate:"required"`
	EndDate        time.Time      `json:"endDate" validate:"required"`
	Location       string         `json:"location"`
	Type           EventType      `json:"type" validate:"oneof=class exam club deadline event"`
	Priority       Priority       `json:"priority" validate:"oneof=low medium high"`
	TargetAudience TargetAudience `json:"targetAudience" validate:"oneof=all specific_department specific_year"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Location = core.CleanString(ne.Location)
	ne.StartDate = ne.StartDate.UTC()
	ne.EndDate = ne.EndDate.UTC()
	if ne.Type == "" {
		ne.Type = EventGeneral
	}
	if ne.Priority == "" {
		ne.Priority = PriorityMedium
	}
	if ne.TargetAudience == "" {
		ne.TargetAudience = AudienceAll
	}
	return validate.Struct(ne)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title          string         `json:"title" validate:"required"`
	Description    string         `json:"description" validate:"required"`
	Subject        string         `json:"subject" validate:"required"`
	DueDate        time.Time      `json:"dueDate" validate:"required"`
	Priority       Priority       `json:"priority" validate:"oneof=low medium high"`
	TargetAudience TargetAudience `json:"targetAudience" validate:"oneof=all specific_department specific_year"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Subject = core.CleanString(na.Subject)
	na.DueDate = na.DueDate.UTC()
	if na.Priority == "" {
		na.Priority = PriorityMedium
	}
	if na.TargetAudience == "" {
		na.TargetAudience = AudienceAll
	}
	return validate.Struct(na)
}

// NewNotification contains information needed to send a Notification.
type NewNotification struct {
	Title          string           `json:"title" validate:"required"`
	Message        string           `json:"message" validate:"required"`
	Type           NotificationType `json:"type" validate:"oneof=reminder update event assignment"`
	TargetAudience TargetAudience   `json:"targetAudience" validate:"oneof=all specific_department specific_year"`
	RelatedID      string           `json:"relatedId"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.RelatedID = core.CleanString(nn.RelatedID)
	if nn.Type == "" {
		nn.Type = NotificationUpdate
	}
	if nn.TargetAudience == "" {
		nn.TargetAudience = AudienceAll
	}
	return validate.Struct(nn)
}

// NewClub contains information needed to create a new Club.
type NewClub struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewClub) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateSettings defines which Settings may be changed; nil fields are left as they are.
type UpdateSettings struct {
	Notifications *bool   `json:"notifications"`
	DarkMode      *bool   `json:"darkMode"`
	AutoSync      *bool   `json:"autoSync"`
	ReminderTime  *int    `json:"reminderTime" validate:"omitempty,oneof=5 15 30 60 1440"`
	Language      *string `json:"language" validate:"omitempty,oneof=English Spanish"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	if us.Language != nil {
		lang := core.CleanString(*us.Language)
		us.Language = &lang
	}
	return validate.Struct(us)
}

// Apply returns s with the provided fields changed.
func (us UpdateSettings) Apply(s Settings) Settings {
	if us.Notifications != nil {
		s.Notifications = *us.Notifications
	}
	if us.DarkMode != nil {
		s.DarkMode = *us.DarkMode
	}
	if us.AutoSync != nil {
		s.AutoSync = *us.AutoSync
	}
	if us.ReminderTime != nil {
		s.ReminderTime = *us.ReminderTime
	}
	if us.Language != nil {
		s.Language = *us.Language
	}
	return s
}
