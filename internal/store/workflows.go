package store

import (
	"context"
	"errors"
	"net/http"
	"time"

	"trackr/internal/domain"
)

// Dismissal delays for failure notifications.
const (
	LoadDismissDelay  = 1000 * time.Millisecond
	EntryDismissDelay = 100 * time.Millisecond
)

const genericFailure = "Something went wrong on our end!"

var errNoEntries = errors.New("store: load response has no weight entries")

// Credentials identify the caller to the Remote Weight API.
type Credentials struct {
	User  string
	Token string
}

// AddEntryRequest holds the parameters of AddWeightEntry.
type AddEntryRequest struct {
	Credentials
	Date   string
	Weight float64
}

// DeleteEntryRequest holds the parameters of DeleteWeightEntry.
type DeleteEntryRequest struct {
	Credentials
	Date string
}

// ModifyEntryRequest holds the parameters of ModifyWeightEntry.
type ModifyEntryRequest struct {
	Credentials
	Date   string
	Weight float64
}

// GetUserWeightData loads the user's entries. No loading flag is used.
func (s *Store) GetUserWeightData(ctx context.Context, creds Credentials) {
	s.log.Debug().Str("user", creds.User).Msg("loading weight entries")

	resp, err := s.api.FetchUser(ctx, creds.User, creds.Token)
	if err == nil {
		if resp == nil {
			return
		}
		if err = s.initFromPayload(resp.Data); err == nil {
			return
		}
	}
	s.log.Warn().Err(err).Str("user", creds.User).Msg("load weight entries failed")
	s.fail("Failed to get trackr data", LoadDismissDelay, nil)
}

func (s *Store) initFromPayload(p domain.UserPayload) error {
	if p.User == nil || p.User.Weight == nil {
		return errNoEntries
	}
	return s.InitRecords(p.User.Weight)
}

// AddWeightEntry records a new entry remotely and, on a 200 response, closes
// the add modal and appends the entry locally.
func (s *Store) AddWeightEntry(ctx context.Context, req AddEntryRequest) error {
	s.SetAddLoading(true)
	date, err := domain.NormalizeDate(req.Date)
	if err != nil {
		return err
	}
	s.log.Debug().Str("user", req.User).Str("date", date).Msg("adding weight entry")

	resp, err := s.api.AddEntry(ctx, req.User, req.Token, req.Date, req.Weight)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("add weight entry failed")
		s.fail("Failed to add entry", EntryDismissDelay, func() { s.SetAddLoading(false) })
		return nil
	}
	if !s.settledOK(resp, "add") {
		return nil
	}
	s.ToggleEntryModal()
	s.AddRecord(domain.WeightEntry{Date: date, Weight: req.Weight})
	s.SetAddLoading(false)
	return nil
}

// DeleteWeightEntry removes the entry remotely and, on a 200 response, closes
// the delete modal and removes every local entry with that date.
func (s *Store) DeleteWeightEntry(ctx context.Context, req DeleteEntryRequest) error {
	s.SetDeleteLoading(true)
	date, err := domain.NormalizeDate(req.Date)
	if err != nil {
		return err
	}
	s.log.Debug().Str("user", req.User).Str("date", date).Msg("deleting weight entry")

	resp, err := s.api.DeleteEntry(ctx, req.User, req.Token, req.Date)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("delete weight entry failed")
		s.fail("Failed to delete entry", EntryDismissDelay, func() { s.SetDeleteLoading(false) })
		return nil
	}
	if !s.settledOK(resp, "delete") {
		return nil
	}
	s.CloseDeleteModal()
	s.DeleteRecord(RecordKey{Date: date})
	s.SetDeleteLoading(false)
	return nil
}

// ModifyWeightEntry updates the entry remotely and, on a 200 response,
// closes the delete modal (the edit dialog shares it) and updates the weight
// of every local entry with that date.
func (s *Store) ModifyWeightEntry(ctx context.Context, req ModifyEntryRequest) error {
	s.SetSaveLoading(true)
	date, err := domain.NormalizeDate(req.Date)
	if err != nil {
		return err
	}
	s.log.Debug().Str("user", req.User).Str("date", date).Msg("modifying weight entry")

	resp, err := s.api.ModifyEntry(ctx, req.User, req.Token, req.Date, req.Weight)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("modify weight entry failed")
		s.fail("Failed to modify entry", EntryDismissDelay, func() { s.SetSaveLoading(false) })
		return nil
	}
	if !s.settledOK(resp, "modify") {
		return nil
	}
	s.CloseDeleteModal()
	s.ModifyRecord(domain.WeightEntry{Date: date, Weight: req.Weight})
	s.SetSaveLoading(false)
	return nil
}

// settledOK reports whether resp is a 200. Any other status leaves the
// workflow's loading flag set and shows nothing.
func (s *Store) settledOK(resp *domain.StatusResponse, op string) bool {
	if resp != nil && resp.Status == http.StatusOK {
		return true
	}
	status := 0
	if resp != nil {
		status = resp.Status
	}
	s.log.Warn().Str("op", op).Int("status", status).Msg("remote call settled without 200; loading flag left set")
	return false
}

// fail shows an error notification, runs clear, and schedules an
// uncancellable dismissal after delay. A later dismissal hides whatever
// notification is visible when it fires.
func (s *Store) fail(message string, delay time.Duration, clear func()) {
	s.SetNotification(NotificationContent{
		Type:        NotificationError,
		Message:     message,
		Description: genericFailure,
	})
	s.ShowNotification()
	if clear != nil {
		clear()
	}
	s.after(delay, s.CloseNotification)
}
