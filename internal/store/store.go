// Package store holds the client-side weight log state: the dated entries a
// user has recorded plus the transient flags a UI renders (modals, loading
// spinners and a single notification slot). All mutation goes through the
// Store's methods, which are safe for concurrent use.
//
// The workflows (GetUserWeightData, AddWeightEntry and friends) run in the
// caller's goroutine and return once the remote call has settled and its
// mutations are applied. Remote failures surface only through the
// notification slot. A workflow returns an error only when the request date
// cannot be parsed. The workflow's loading flag has already been raised by
// then and stays set; the API is not called.
package store

import (
	"sync"
	"time"

	"trackr/internal/domain"

	"github.com/rs/zerolog"
)

// NotificationType classifies the notification slot's content.
type NotificationType string

// Notification types understood by the UI layer.
const (
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
)

// NotificationContent is the payload of SetNotification.
type NotificationContent struct {
	Type        NotificationType
	Message     string
	Description string
}

// Notification is the single overwritable notification slot.
type Notification struct {
	Visible bool
	NotificationContent
}

// RecordKey identifies the entries removed by DeleteRecord.
type RecordKey struct {
	Date string
}

// State is a point-in-time copy of everything the store holds.
type State struct {
	Entries           []domain.WeightEntry
	AddLoading        bool
	SaveLoading       bool
	DeleteLoading     bool
	ShowAddEntryModal bool
	IsShowDeleteModal bool
	Notification      Notification
}

// AfterFunc schedules f to run once after d. There is no way to cancel it.
type AfterFunc func(d time.Duration, f func())

// Store is the weight log state container.
type Store struct {
	mu    sync.Mutex
	state State

	api   domain.WeightAPI
	after AfterFunc
	log   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithAfterFunc replaces the scheduler used for notification dismissal.
func WithAfterFunc(after AfterFunc) Option {
	return func(s *Store) { s.after = after }
}

// New creates a Store with empty entries and every flag cleared.
func New(api domain.WeightAPI, opts ...Option) *Store {
	s := &Store{
		api: api,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		log: zerolog.Nop(),
		state: State{
			Entries: []domain.WeightEntry{},
			Notification: Notification{
				NotificationContent: NotificationContent{
					Type:        NotificationError,
					Message:     "Unknown Error",
					Description: "An unknown error occurred",
				},
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// --- mutators ---

// InitRecords replaces the entries with raw, normalizing every date to
// calendar-date form. Duplicate dates in raw are kept. If any date fails to
// parse the entries are left untouched.
func (s *Store) InitRecords(raw []domain.WeightEntry) error {
	entries := make([]domain.WeightEntry, 0, len(raw))
	for _, e := range raw {
		date, err := domain.NormalizeDate(e.Date)
		if err != nil {
			return err
		}
		entries = append(entries, domain.WeightEntry{Date: date, Weight: e.Weight})
	}
	s.update(func(st *State) { st.Entries = entries })
	return nil
}

// AddRecord appends entry without any uniqueness check.
func (s *Store) AddRecord(entry domain.WeightEntry) {
	s.update(func(st *State) { st.Entries = append(st.Entries, entry) })
}

// DeleteRecord removes every entry whose date equals key.Date.
func (s *Store) DeleteRecord(key RecordKey) {
	s.update(func(st *State) {
		kept := make([]domain.WeightEntry, 0, len(st.Entries))
		for _, e := range st.Entries {
			if e.Date != key.Date {
				kept = append(kept, e)
			}
		}
		st.Entries = kept
	})
}

// ModifyRecord sets the weight of every entry dated entry.Date.
func (s *Store) ModifyRecord(entry domain.WeightEntry) {
	s.update(func(st *State) {
		next := make([]domain.WeightEntry, len(st.Entries))
		for i, e := range st.Entries {
			if e.Date == entry.Date {
				e.Weight = entry.Weight
			}
			next[i] = e
		}
		st.Entries = next
	})
}

// ToggleEntryModal flips the add-entry modal.
func (s *Store) ToggleEntryModal() {
	s.update(func(st *State) { st.ShowAddEntryModal = !st.ShowAddEntryModal })
}

// ShowDeleteModal opens the delete modal.
func (s *Store) ShowDeleteModal() {
	s.update(func(st *State) { st.IsShowDeleteModal = true })
}

// CloseDeleteModal closes the delete modal.
func (s *Store) CloseDeleteModal() {
	s.update(func(st *State) { st.IsShowDeleteModal = false })
}

// SetAddLoading sets the add-in-flight flag.
func (s *Store) SetAddLoading(v bool) {
	s.update(func(st *State) { st.AddLoading = v })
}

// SetSaveLoading sets the modify-in-flight flag.
func (s *Store) SetSaveLoading(v bool) {
	s.update(func(st *State) { st.SaveLoading = v })
}

// SetDeleteLoading sets the delete-in-flight flag.
func (s *Store) SetDeleteLoading(v bool) {
	s.update(func(st *State) { st.DeleteLoading = v })
}

// SetNotification overwrites the notification content. Visibility is not
// changed.
func (s *Store) SetNotification(c NotificationContent) {
	s.update(func(st *State) { st.Notification.NotificationContent = c })
}

// ShowNotification makes the notification visible.
func (s *Store) ShowNotification() {
	s.update(func(st *State) { st.Notification.Visible = true })
}

// CloseNotification hides the notification.
func (s *Store) CloseNotification() {
	s.update(func(st *State) { st.Notification.Visible = false })
}

// --- accessors ---

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Entries = append([]domain.WeightEntry(nil), s.state.Entries...)
	return st
}

// Entries returns a copy of the entries in insertion order.
func (s *Store) Entries() []domain.WeightEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WeightEntry(nil), s.state.Entries...)
}

func (s *Store) read(fn func(st *State) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// AddLoading reports whether an add is in flight.
func (s *Store) AddLoading() bool { return s.read(func(st *State) bool { return st.AddLoading }) }

// SaveLoading reports whether a modify is in flight.
func (s *Store) SaveLoading() bool { return s.read(func(st *State) bool { return st.SaveLoading }) }

// DeleteLoading reports whether a delete is in flight.
func (s *Store) DeleteLoading() bool { return s.read(func(st *State) bool { return st.DeleteLoading }) }

// ShowAddEntryModal reports whether the add-entry modal is open.
func (s *Store) ShowAddEntryModal() bool {
	return s.read(func(st *State) bool { return st.ShowAddEntryModal })
}

// IsShowDeleteModal reports whether the delete modal is open.
func (s *Store) IsShowDeleteModal() bool {
	return s.read(func(st *State) bool { return st.IsShowDeleteModal })
}

// Notification returns the notification slot.
func (s *Store) Notification() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Notification
}
