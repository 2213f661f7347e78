package campus

import (
	"context"
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
)

type (
	// Store is a cached list of records.
	Store[T any] interface {
		GetAll(ctx context.Context) []T
		SaveAll(ctx context.Context, items []T) error
	}

	SettingsStore interface {
		Get(ctx context.Context) Settings
		Save(ctx context.Context, settings Settings) error
	}

	// Session tells who is signed in.
	Session interface {
		CurrentUser(ctx context.Context) *user.User
	}

	// Remote is the sync bridge.
	Remote interface {
		Create(ctx context.Context, collection string, record interface{}) (string, error)
		List(ctx context.Context, collection string) ([]core.Document, error)
	}

	Deps struct {
		Events        Store[Event]
		Assignments   Store[Assignment]
		Clubs         Store[Club]
		Notifications Store[Notification]
		Settings      SettingsStore
		Session       Session
		Remote        Remote // optional
		Validate      *validator.Validate
		Translator    ut.Translator
		Logger        core.Logger
	}

	Service struct {
		events        Store[Event]
		assignments   Store[Assignment]
		clubs         Store[Club]
		notifications Store[Notification]
		settings      SettingsStore
		session       Session
		remote        Remote
		validate      *validator.Validate
		translator    ut.Translator
		logger        core.Logger
	}
)

func NewService(deps Deps) *Service {
	return &Service{
		events:        deps.Events,
		assignments:   deps.Assignments,
		clubs:         deps.Clubs,
		notifications: deps.Notifications,
		settings:      deps.Settings,
		session:       deps.Session,
		remote:        deps.Remote,
		validate:      deps.Validate,
		translator:    deps.Translator,
		logger:        deps.Logger,
	}
}

func (svc *Service) invalid(op string, err error) error {
	return core.E(core.KindValidation, op, core.TranslateFieldErrors(err, svc.translator))
}

// actor is the id recorded as creator/sender.
func (svc *Service) actor(ctx context.Context) (id string, isAdmin bool) {
	if usr := svc.session.CurrentUser(ctx); usr != nil {
		return usr.ID, usr.IsAdmin()
	}
	return "admin", false
}

// admin returns the signed-in administrator's id, or a KindAuth error for anyone else.
func (svc *Service) admin(ctx context.Context, op, action string) (string, error) {
	id, isAdmin := svc.actor(ctx)
	if !isAdmin {
		return "", core.E(core.KindAuth, op, fmt.Sprintf("only administrators can %s", action))
	}
	return id, nil
}

// push writes record to the remote collection when a remote is configured and returns the
// remote id, or a fresh local id otherwise.
func (svc *Service) push(ctx context.Context, collection string, record interface{}) (string, error) {
	if svc.remote == nil {
		return uuid.NewString(), nil
	}
	id, err := svc.remote.Create(ctx, collection, record)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("pushing to %s", collection), err)
		return "", err
	}
	return id, nil
}

func (svc *Service) CreateEvent(ctx context.Context, ne NewEvent) (Event, error) {
	const op = "campus.CreateEvent"
	createdBy, err := svc.admin(ctx, op, "create events")
	if err != nil {
		return Event{}, err
	}
	if err = ne.Validate(svc.validate); err != nil {
		return Event{}, svc.invalid(op, err)
	}

	evt := Event{
		Title:          ne.Title,
		Description:    ne.Description,
		StartDate:      ne.StartDate,
		EndDate:        ne.EndDate,
		Location:       ne.Location,
		Type:           ne.Type,
		Priority:       ne.Priority,
		CreatedBy:      createdBy,
		TargetAudience: ne.TargetAudience,
	}
	id, err := svc.push(ctx, core.EventsCollection, evt)
	if err != nil {
		return Event{}, err
	}
	evt.ID = id

	if err = svc.events.SaveAll(ctx, append(svc.events.GetAll(ctx), evt)); err != nil {
		return Event{}, err
	}

	location := evt.Location
	if location == "" {
		location = "No location specified"
	}
	svc.notifyLinked(ctx, NewNotification{
		Title:          "New Event Added",
		Message:        fmt.Sprintf("%s - %s", evt.Title, location),
		Type:           NotificationEvent,
		TargetAudience: evt.TargetAudience,
		RelatedID:      evt.ID,
	})
	return evt, nil
}

func (svc *Service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	const op = "campus.CreateAssignment"
	createdBy, err := svc.admin(ctx, op, "create assignments")
	if err != nil {
		return Assignment{}, err
	}
	if err = na.Validate(svc.validate); err != nil {
		return Assignment{}, svc.invalid(op, err)
	}

	asg := Assignment{
		Title:       na.Title,
		Description: na.Description,
		Subject:     na.Subject,
		DueDate:     na.DueDate,
		Priority:    na.Priority,
		CreatedBy:   createdBy,
	}
	id, err := svc.push(ctx, core.AssignmentsCollection, asg)
	if err != nil {
		return Assignment{}, err
	}
	asg.ID = id

	if err = svc.assignments.SaveAll(ctx, append(svc.assignments.GetAll(ctx), asg)); err != nil {
		return Assignment{}, err
	}

	svc.notifyLinked(ctx, NewNotification{
		Title:          "New Assignment Posted",
		Message:        fmt.Sprintf("%s - %s", asg.Title, asg.Subject),
		Type:           NotificationAssignment,
		TargetAudience: na.TargetAudience,
		RelatedID:      asg.ID,
	})
	return asg, nil
}

// notifyLinked sends the notification that accompanies a created record. The record is
// already saved, so failures are only logged.
func (svc *Service) notifyLinked(ctx context.Context, nn NewNotification) {
	if _, err := svc.SendNotification(ctx, nn); err != nil {
		svc.logger.Warn(fmt.Sprintf("sending notification for %s", nn.RelatedID), err)
	}
}

func (svc *Service) SendNotification(ctx context.Context, nn NewNotification) (Notification, error) {
	const op = "campus.SendNotification"
	sentBy, err := svc.admin(ctx, op, "send notifications")
	if err != nil {
		return Notification{}, err
	}
	if err = nn.Validate(svc.validate); err != nil {
		return Notification{}, svc.invalid(op, err)
	}

	n := Notification{
		Title:          nn.Title,
		Message:        nn.Message,
		Type:           nn.Type,
		Timestamp:      NowFunc().UTC(),
		SentBy:         sentBy,
		TargetAudience: nn.TargetAudience,
		RelatedID:      nn.RelatedID,
	}
	id, err := svc.push(ctx, core.NotificationsCollection, n)
	if err != nil {
		return Notification{}, err
	}
	n.ID = id

	if err = svc.notifications.SaveAll(ctx, append(svc.notifications.GetAll(ctx), n)); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func notFound(op, what, id string) error {
	return core.E(core.KindNotFound, op, fmt.Sprintf("%s %s not found", what, id))
}

func (svc *Service) SetEventCompleted(ctx context.Context, id string, completed bool) (Event, error) {
	const op = "campus.SetEventCompleted"
	events := svc.events.GetAll(ctx)
	for i := range events {
		if events[i].ID == id {
			events[i].IsCompleted = completed
			return events[i], svc.events.SaveAll(ctx, events)
		}
	}
	return Event{}, notFound(op, "event", id)
}

// DeleteEvent removes a local event. Only admins may delete events.
func (svc *Service) DeleteEvent(ctx context.Context, id string) error {
	const op = "campus.DeleteEvent"
	if _, err := svc.admin(ctx, op, "delete events"); err != nil {
		return err
	}
	events := svc.events.GetAll(ctx)
	for i := range events {
		if events[i].ID == id {
			return svc.events.SaveAll(ctx, append(events[:i], events[i+1:]...))
		}
	}
	return notFound(op, "event", id)
}

// SetAssignmentCompleted toggles an assignment and sets (or clears) its submission date.
func (svc *Service) SetAssignmentCompleted(ctx context.Context, id string, completed bool) (Assignment, error) {
	const op = "campus.SetAssignmentCompleted"
	assignments := svc.assignments.GetAll(ctx)
	for i := range assignments {
		if assignments[i].ID != id {
			continue
		}
		assignments[i].IsCompleted = completed
		if completed {
			assignments[i].SubmittedAt.SetValid(NowFunc().UTC())
		} else {
			assignments[i].SubmittedAt = null.Time{}
		}
		return assignments[i], svc.assignments.SaveAll(ctx, assignments)
	}
	return Assignment{}, notFound(op, "assignment", id)
}

func (svc *Service) MarkNotificationRead(ctx context.Context, id string) error {
	const op = "campus.MarkNotificationRead"
	notifications := svc.notifications.GetAll(ctx)
	for i := range notifications {
		if notifications[i].ID == id {
			if notifications[i].IsRead {
				return nil
			}
			notifications[i].IsRead = true
			return svc.notifications.SaveAll(ctx, notifications)
		}
	}
	return notFound(op, "notification", id)
}

// MarkAllNotificationsRead returns the number of notifications that were unread.
func (svc *Service) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	notifications := svc.notifications.GetAll(ctx)
	var marked int
	for i := range notifications {
		if !notifications[i].IsRead {
			notifications[i].IsRead = true
			marked++
		}
	}
	if marked == 0 {
		return 0, nil
	}
	return marked, svc.notifications.SaveAll(ctx, notifications)
}

func (svc *Service) DeleteNotification(ctx context.Context, id string) error {
	const op = "campus.DeleteNotification"
	notifications := svc.notifications.GetAll(ctx)
	for i := range notifications {
		if notifications[i].ID == id {
			return svc.notifications.SaveAll(ctx, append(notifications[:i], notifications[i+1:]...))
		}
	}
	return notFound(op, "notification", id)
}

// UnreadNotifications returns the notifications not read yet, optionally of one type.
func (svc *Service) UnreadNotifications(ctx context.Context, typ NotificationType) []Notification {
	var unread []Notification
	for _, n := range svc.notifications.GetAll(ctx) {
		if !n.IsRead && (typ == "" || n.Type == typ) {
			unread = append(unread, n)
		}
	}
	return unread
}

func (svc *Service) CreateClub(ctx context.Context, nc NewClub) (Club, error) {
	const op = "campus.CreateClub"
	if err := nc.Validate(svc.validate); err != nil {
		return Club{}, svc.invalid(op, err)
	}
	club := Club{
		ID:          uuid.NewString(),
		Name:        nc.Name,
		Description: nc.Description,
		Members:     []string{CurrentUserID},
		IsMember:    true,
		AdminID:     CurrentUserID,
		Events:      []Event{},
	}
	if err := svc.clubs.SaveAll(ctx, append(svc.clubs.GetAll(ctx), club)); err != nil {
		return Club{}, err
	}
	return club, nil
}

func (svc *Service) setMembership(ctx context.Context, op, id string, member bool) (Club, error) {
	clubs := svc.clubs.GetAll(ctx)
	for i := range clubs {
		if clubs[i].ID != id {
			continue
		}
		club := &clubs[i]
		club.IsMember = member
		switch {
		case member && !club.HasMember(CurrentUserID):
			club.Members = append(club.Members, CurrentUserID)
		case !member:
			members := make([]string, 0, len(club.Members))
			for _, m := range club.Members {
				if m != CurrentUserID {
					members = append(members, m)
				}
			}
			club.Members = members
		}
		return *club, svc.clubs.SaveAll(ctx, clubs)
	}
	return Club{}, notFound(op, "club", id)
}

func (svc *Service) JoinClub(ctx context.Context, id string) (Club, error) {
	return svc.setMembership(ctx, "campus.JoinClub", id, true)
}

func (svc *Service) LeaveClub(ctx context.Context, id string) (Club, error) {
	return svc.setMembership(ctx, "campus.LeaveClub", id, false)
}

func (svc *Service) MyClubs(ctx context.Context) []Club {
	var mine []Club
	for _, c := range svc.clubs.GetAll(ctx) {
		if c.IsMember {
			mine = append(mine, c)
		}
	}
	return mine
}

func (svc *Service) Settings(ctx context.Context) Settings {
	return svc.settings.Get(ctx)
}

func (svc *Service) UpdateSettings(ctx context.Context, us UpdateSettings) (Settings, error) {
	const op = "campus.UpdateSettings"
	if err := us.Validate(svc.validate); err != nil {
		return Settings{}, svc.invalid(op, err)
	}
	settings := us.Apply(svc.settings.Get(ctx))
	if err := svc.settings.Save(ctx, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Listing reads the cache only.

func (svc *Service) Events(ctx context.Context) []Event {
	return svc.events.GetAll(ctx)
}

func (svc *Service) Assignments(ctx context.Context) []Assignment {
	return svc.assignments.GetAll(ctx)
}

// Notifications returns the notifications newest first.
func (svc *Service) Notifications(ctx context.Context) []Notification {
	return Recent(svc.notifications.GetAll(ctx), 0)
}

func (svc *Service) Clubs(ctx context.Context) []Club {
	return svc.clubs.GetAll(ctx)
}

// Dashboard summarizes the campus data.
type Dashboard struct {
	TotalEvents         int            `json:"totalEvents"`
	TotalAssignments    int            `json:"totalAssignments"`
	PendingAssignments  int            `json:"pendingAssignments"`
	UnreadNotifications int            `json:"unreadNotifications"`
	MyClubs             int            `json:"myClubs"`
	UpcomingEvents      []Event        `json:"upcomingEvents"`
	RecentNotifications []Notification `json:"recentNotifications"`
	Remote              bool           `json:"remote"` // totals counted on the remote store
}

const dashboardListLen = 3

// Dashboard counts events and assignments on the remote store when one is configured
// (falling back to the cache if it is unreachable), and everything else locally.
func (svc *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		dash        Dashboard
		events      []Event
		assignments []Assignment
	)

	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}

	var remoteEvents, remoteAssignments []core.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events = svc.events.GetAll(ctx)
		return nil
	})
	g.Go(func() error {
		assignments = svc.assignments.GetAll(ctx)
		return nil
	})
	if svc.remote != nil {
		g.Go(func() (err error) {
			remoteEvents, err = svc.remote.List(gctx, core.EventsCollection)
			return errors.Wrap(err, "listing remote events")
		})
		g.Go(func() (err error) {
			remoteAssignments, err = svc.remote.List(gctx, core.AssignmentsCollection)
			return errors.Wrap(err, "listing remote assignments")
		})
	}
	if err := g.Wait(); err != nil {
		svc.logger.Warn("loading remote dashboard data", err)
	} else if svc.remote != nil {
		dash.Remote = true
	}

	if dash.Remote {
		dash.TotalEvents = len(remoteEvents)
		dash.TotalAssignments = len(remoteAssignments)
	} else {
		dash.TotalEvents = len(events)
		dash.TotalAssignments = len(assignments)
	}
	dash.PendingAssignments = len(Pending(assignments))
	dash.UpcomingEvents = Upcoming(events, dashboardListLen)

	notifications := svc.notifications.GetAll(ctx)
	for _, n := range notifications {
		if !n.IsRead {
			dash.UnreadNotifications++
		}
	}
	dash.RecentNotifications = Recent(notifications, dashboardListLen)
	dash.MyClubs = len(svc.MyClubs(ctx))
	return dash, nil
}
