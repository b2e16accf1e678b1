package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"speaker-booking/internal/calendar"
)

// ErrNoSpeaker is returned when booking before any speaker is chosen.
var ErrNoSpeaker = errors.New("no speaker selected")

type Speaker struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Speciality string `json:"speciality,omitempty"`
}

// Directory is the remote side of a booking session: speaker data, slot
// data and booking persistence.
type Directory interface {
	SpeakerProfile(ctx context.Context, speakerID string) (Speaker, error)
	SlotsGroupedByDate(ctx context.Context, speakerID string) (calendar.SlotsByDate, error)
	PersistBooking(ctx context.Context, speakerID, sessionID string) error
}

type Clock func() time.Time

// Session is one client's booking calendar. Remote calls run without the
// lock held; their results are applied only while the speaker they were
// made for is still the active one. Slot results must also match slotsGen,
// which moves on every selection and every local booking.
type Session struct {
	ID string

	dir     Directory
	inbox   *Inbox
	logger  *zap.Logger
	now     Clock
	loc     *time.Location
	listens bool

	mu           sync.Mutex
	speakerID    string
	speaker      Speaker
	slotsGen     uint64
	fromChannel  bool
	cal          *calendar.Calendar
	scrollTo     string
	lastActivity time.Time
}

func newSession(id string, dir Directory, logger *zap.Logger, now Clock, loc *time.Location, listens bool) *Session {
	s := &Session{
		ID:      id,
		dir:     dir,
		inbox:   NewInbox(logger),
		logger:  logger,
		now:     now,
		loc:     loc,
		listens: listens,
	}
	s.cal = calendar.New(s.today(), func(today calendar.Date) {
		s.scrollTo = today.String()
	})
	s.lastActivity = now()
	return s
}

func (s *Session) today() calendar.Date {
	return calendar.DateOf(s.now().In(s.loc))
}

// Listens reports whether the session follows the speaker-selected channel.
func (s *Session) Listens() bool { return s.listens }

// SetSpeaker switches the session to speakerID and loads its profile and
// slots. An empty id clears the session.
func (s *Session) SetSpeaker(ctx context.Context, speakerID string) {
	s.mu.Lock()
	s.touch()
	s.speakerID = speakerID
	s.slotsGen++
	gen := s.slotsGen
	if speakerID == "" {
		s.speaker = Speaker{}
		s.cal.Reset(s.today())
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sp, err := s.dir.SpeakerProfile(ctx, speakerID)
		s.applyProfile(speakerID, sp, err)
	}()
	go func() {
		defer wg.Done()
		slots, err := s.dir.SlotsGroupedByDate(ctx, speakerID)
		s.applySlots(speakerID, gen, slots, err)
	}()
	wg.Wait()
}

// selectFromChannel handles a selection delivered by the event bus.
func (s *Session) selectFromChannel(ctx context.Context, speakerID string) {
	s.mu.Lock()
	s.fromChannel = true
	s.mu.Unlock()
	s.SetSpeaker(ctx, speakerID)
}

func (s *Session) applyProfile(speakerID string, sp Speaker, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speakerID != speakerID {
		s.logger.Debug("dropping stale speaker profile",
			zap.String("session", s.ID), zap.String("speaker", speakerID))
		return
	}
	if err != nil {
		s.inbox.Notify(errorToast(err))
		return
	}
	s.speaker = sp
}

func (s *Session) applySlots(speakerID string, gen uint64, slots calendar.SlotsByDate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.speakerID != speakerID || s.slotsGen != gen {
		s.logger.Debug("dropping stale slots",
			zap.String("session", s.ID), zap.String("speaker", speakerID))
		return
	}
	if err != nil {
		s.inbox.Notify(errorToast(err))
		return
	}
	for _, d := range slots.DuplicateDays() {
		s.logger.Warn("several slot groups fall on one day, only the first is shown",
			zap.String("speaker", speakerID), zap.Stringer("day", d))
	}
	s.cal.Load(slots, s.today())
}

// BookSlot persists the booking remotely and, once that succeeds, marks the
// slot booked locally. The returned Booked is empty when the active speaker
// changed while the remote call was in flight.
func (s *Session) BookSlot(ctx context.Context, sessionID string) (calendar.Booked, error) {
	s.mu.Lock()
	s.touch()
	speakerID := s.speakerID
	s.mu.Unlock()

	if speakerID == "" {
		s.inbox.Notify(errorToast(ErrNoSpeaker))
		return calendar.Booked{}, ErrNoSpeaker
	}

	if err := s.dir.PersistBooking(ctx, speakerID, sessionID); err != nil {
		s.inbox.Notify(errorToast(err))
		return calendar.Booked{}, fmt.Errorf("persist booking: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.speakerID != speakerID {
		s.logger.Info("booking persisted after speaker changed, local view left as is",
			zap.String("session", s.ID), zap.String("speaker", speakerID), zap.String("slot", sessionID))
		return calendar.Booked{}, nil
	}

	next, err := calendar.ApplyBooking(s.cal.Slots(), sessionID)
	if err != nil {
		s.logger.Error("booked slot missing from local data",
			zap.String("session", s.ID), zap.String("speaker", speakerID), zap.Error(err))
		s.inbox.Notify(errorToast(err))
		return calendar.Booked{}, err
	}
	booked, _ := calendar.FindSlot(next, sessionID)
	s.cal.Load(next, s.today())
	// Slot fetches started before this point predate the booking.
	s.slotsGen++
	s.inbox.Notify(Notification{Title: "Success", Message: "Session booked successfully!", Severity: SeveritySuccess})
	return booked, nil
}

func (s *Session) PrevMonth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cal.PrevMonth(s.today())
}

func (s *Session) NextMonth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cal.NextMonth(s.today())
}

// SelectDay selects a day clicked in the grid; disabled days are refused.
func (s *Session) SelectDay(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.cal.SelectDate(date, s.today())
}

// PickDate selects a date typed into the date input.
func (s *Session) PickDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cal.PickDate(date, s.today())
}

func (s *Session) ShowOnlySelected(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.cal.SetShowOnlySelected(on)
}

// View is a render-ready snapshot of the session.
type View struct {
	SessionID         string               `json:"sessionId"`
	Speaker           *Speaker             `json:"speaker,omitempty"`
	IsSpeakerSelected bool                 `json:"isSpeakerSelected"`
	MonthLabel        string               `json:"monthLabel"`
	Weekdays          []string             `json:"weekDays"`
	Month             int                  `json:"month"`
	Year              int                  `json:"year"`
	SelectedDate      string               `json:"selectedDate"`
	ShowOnlySelected  bool                 `json:"showOnlySelected"`
	Days              []calendar.DayView   `json:"days"`
	SelectedDaySlots  []calendar.SlotView  `json:"selectedDaySlots"`
	ScrollTo          string               `json:"scrollTo,omitempty"`
	Notifications     []Notification       `json:"notifications"`
	Slots             calendar.SlotsByDate `json:"-"`
}

// View renders the session. Pending toasts and the scroll request are
// handed out once and then cleared.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	nav := s.cal.Navigation()
	days := s.cal.Visible()
	if days == nil {
		days = []calendar.DayView{}
	}
	v := View{
		SessionID:         s.ID,
		IsSpeakerSelected: s.fromChannel,
		MonthLabel:        s.cal.Label(),
		Weekdays:          calendar.Weekdays,
		Month:             int(nav.Month),
		Year:              nav.Year,
		SelectedDate:      nav.Selected,
		ShowOnlySelected:  nav.ShowOnlySelected,
		Days:              days,
		SelectedDaySlots:  s.cal.SelectedDaySlots(),
		ScrollTo:          s.scrollTo,
		Notifications:     s.inbox.Drain(),
		Slots:             s.cal.Slots(),
	}
	if s.speaker.ID != "" {
		sp := s.speaker
		v.Speaker = &sp
	}
	s.scrollTo = ""
	return v
}

// SpeakerID returns the active speaker.
func (s *Session) SpeakerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakerID
}

// Speaker returns the loaded profile of the active speaker.
func (s *Session) Speaker() Speaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaker
}

// Notify queues a toast for the client, e.g. from an outer layer.
func (s *Session) Notify(n Notification) { s.inbox.Notify(n) }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// touch must be called with mu held.
func (s *Session) touch() { s.lastActivity = s.now() }
