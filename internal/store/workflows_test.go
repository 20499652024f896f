package store

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"trackr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	fetchFn  func(ctx context.Context, user, token string) (*domain.FetchUserResponse, error)
	addFn    func(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error)
	deleteFn func(ctx context.Context, user, token, date string) (*domain.StatusResponse, error)
	modifyFn func(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error)
}

func (f *fakeAPI) FetchUser(ctx context.Context, user, token string) (*domain.FetchUserResponse, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx, user, token)
	}
	return nil, nil
}

func (f *fakeAPI) AddEntry(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error) {
	if f.addFn != nil {
		return f.addFn(ctx, user, token, date, weight)
	}
	return ok(), nil
}

func (f *fakeAPI) DeleteEntry(ctx context.Context, user, token, date string) (*domain.StatusResponse, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, user, token, date)
	}
	return ok(), nil
}

func (f *fakeAPI) ModifyEntry(ctx context.Context, user, token, date string, weight float64) (*domain.StatusResponse, error) {
	if f.modifyFn != nil {
		return f.modifyFn(ctx, user, token, date, weight)
	}
	return ok(), nil
}

func ok() *domain.StatusResponse { return &domain.StatusResponse{Status: http.StatusOK} }

var errNetwork = errors.New("network down")

// fakeScheduler records deferred calls so tests decide when they fire.
type fakeScheduler struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

func (f *fakeScheduler) AfterFunc(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, scheduled{delay: d, fn: fn})
}

func (f *fakeScheduler) delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Duration, len(f.pending))
	for i, p := range f.pending {
		out[i] = p.delay
	}
	return out
}

// fire runs the i-th scheduled call.
func (f *fakeScheduler) fire(i int) {
	f.mu.Lock()
	fn := f.pending[i].fn
	f.mu.Unlock()
	fn()
}

func newTestStore(api *fakeAPI) (*Store, *fakeScheduler) {
	sched := &fakeScheduler{}
	return New(api, WithAfterFunc(sched.AfterFunc)), sched
}

var creds = Credentials{User: "alice", Token: "tok"}

func TestGetUserWeightData_Success(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		fetchFn: func(_ context.Context, user, token string) (*domain.FetchUserResponse, error) {
			assert.Equal(t, "alice", user)
			assert.Equal(t, "tok", token)
			return &domain.FetchUserResponse{Status: http.StatusOK, Data: domain.UserPayload{
				User: &domain.UserRecord{Weight: []domain.WeightEntry{
					{Date: "2023-05-01T14:30:00Z", Weight: 70},
					{Date: "2023-05-03", Weight: 69.5},
				}},
			}}, nil
		},
	})

	s.GetUserWeightData(context.Background(), creds)

	assert.Equal(t, []domain.WeightEntry{
		{Date: "2023-05-01", Weight: 70},
		{Date: "2023-05-03", Weight: 69.5},
	}, s.Entries())
	assert.False(t, s.Notification().Visible)
	assert.Empty(t, sched.delays())
}

func TestGetUserWeightData_NoPayloadSkipsUpdate(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{})
	s.AddRecord(domain.WeightEntry{Date: "2023-05-01", Weight: 70})

	s.GetUserWeightData(context.Background(), creds)

	assert.Len(t, s.Entries(), 1)
	assert.False(t, s.Notification().Visible)
}

func TestGetUserWeightData_Failure(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		fetchFn: func(context.Context, string, string) (*domain.FetchUserResponse, error) {
			return nil, errNetwork
		},
	})

	s.GetUserWeightData(context.Background(), creds)

	n := s.Notification()
	assert.True(t, n.Visible)
	assert.Equal(t, NotificationError, n.Type)
	assert.Equal(t, "Failed to get trackr data", n.Message)
	assert.Equal(t, "Something went wrong on our end!", n.Description)
	assert.False(t, s.AddLoading() || s.SaveLoading() || s.DeleteLoading())

	require.Equal(t, []time.Duration{1000 * time.Millisecond}, sched.delays())
	sched.fire(0)
	assert.False(t, s.Notification().Visible)
}

func TestGetUserWeightData_MissingEntriesIsFailure(t *testing.T) {
	payloads := map[string]domain.UserPayload{
		"no user":     {},
		"null weight": {User: &domain.UserRecord{Username: "alice"}},
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			s, sched := newTestStore(&fakeAPI{
				fetchFn: func(context.Context, string, string) (*domain.FetchUserResponse, error) {
					return &domain.FetchUserResponse{Status: http.StatusOK, Data: payload}, nil
				},
			})
			s.AddRecord(domain.WeightEntry{Date: "2023-05-01", Weight: 70})

			s.GetUserWeightData(context.Background(), creds)

			assert.Equal(t, []domain.WeightEntry{{Date: "2023-05-01", Weight: 70}}, s.Entries())
			n := s.Notification()
			assert.True(t, n.Visible)
			assert.Equal(t, "Failed to get trackr data", n.Message)
			assert.Equal(t, []time.Duration{LoadDismissDelay}, sched.delays())
		})
	}
}

func TestGetUserWeightData_EmptyListClearsEntries(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		fetchFn: func(context.Context, string, string) (*domain.FetchUserResponse, error) {
			return &domain.FetchUserResponse{Status: http.StatusOK, Data: domain.UserPayload{
				User: &domain.UserRecord{Weight: []domain.WeightEntry{}},
			}}, nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-05-01", Weight: 70})

	s.GetUserWeightData(context.Background(), creds)

	assert.Empty(t, s.Entries())
	assert.False(t, s.Notification().Visible)
	assert.Empty(t, sched.delays())
}

func TestGetUserWeightData_BadPayloadDate(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		fetchFn: func(context.Context, string, string) (*domain.FetchUserResponse, error) {
			return &domain.FetchUserResponse{Status: http.StatusOK, Data: domain.UserPayload{
				User: &domain.UserRecord{Weight: []domain.WeightEntry{{Date: "yesterday", Weight: 1}}},
			}}, nil
		},
	})

	s.GetUserWeightData(context.Background(), creds)

	assert.Empty(t, s.Entries())
	assert.Equal(t, "Failed to get trackr data", s.Notification().Message)
	assert.Equal(t, []time.Duration{LoadDismissDelay}, sched.delays())
}

func TestAddWeightEntry_Success(t *testing.T) {
	var gotDate string
	s, sched := newTestStore(&fakeAPI{
		addFn: func(_ context.Context, _, _, date string, weight float64) (*domain.StatusResponse, error) {
			gotDate = date
			assert.InDelta(t, 70.0, weight, 0)
			return ok(), nil
		},
	})
	s.ToggleEntryModal()

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70}))

	assert.Equal(t, "2023-06-01", gotDate)
	assert.Equal(t, []domain.WeightEntry{{Date: "2023-06-01", Weight: 70}}, s.Entries())
	assert.False(t, s.AddLoading())
	assert.False(t, s.ShowAddEntryModal())
	assert.False(t, s.Notification().Visible)
	assert.Empty(t, sched.delays())
}

func TestAddWeightEntry_SendsRawDateStoresNormalized(t *testing.T) {
	var gotDate string
	s, _ := newTestStore(&fakeAPI{
		addFn: func(_ context.Context, _, _, date string, _ float64) (*domain.StatusResponse, error) {
			gotDate = date
			return ok(), nil
		},
	})

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01T08:15:00Z", Weight: 70}))

	assert.Equal(t, "2023-06-01T08:15:00Z", gotDate)
	assert.Equal(t, "2023-06-01", s.Entries()[0].Date)
}

func TestAddWeightEntry_LoadingWhileInFlight(t *testing.T) {
	var s *Store
	s, _ = newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			assert.True(t, s.AddLoading())
			return ok(), nil
		},
	})

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70}))
	assert.False(t, s.AddLoading())
}

func TestAddWeightEntry_Rejected(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})
	s.ToggleEntryModal()

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70}))

	assert.Empty(t, s.Entries())
	assert.False(t, s.AddLoading())
	assert.True(t, s.ShowAddEntryModal(), "modal stays open on failure")
	n := s.Notification()
	assert.True(t, n.Visible)
	assert.Equal(t, "Failed to add entry", n.Message)
	assert.Equal(t, "Something went wrong on our end!", n.Description)

	require.Equal(t, []time.Duration{100 * time.Millisecond}, sched.delays())
	sched.fire(0)
	assert.False(t, s.Notification().Visible)
}

func TestAddWeightEntry_Non200LeavesLoadingSet(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return &domain.StatusResponse{Status: http.StatusBadRequest}, nil
		},
	})
	s.ToggleEntryModal()

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70}))

	assert.Empty(t, s.Entries())
	assert.True(t, s.AddLoading())
	assert.True(t, s.ShowAddEntryModal())
	assert.False(t, s.Notification().Visible)
	assert.Empty(t, sched.delays())
}

func TestAddWeightEntry_InvalidDate(t *testing.T) {
	called := false
	s, _ := newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			called = true
			return ok(), nil
		},
	})

	err := s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "someday", Weight: 70})
	require.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.False(t, called)
	assert.True(t, s.AddLoading())
	assert.Empty(t, s.Entries())
	assert.False(t, s.Notification().Visible)
}

func TestDeleteAndModify_InvalidDateLeavesLoadingSet(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		deleteFn: func(context.Context, string, string, string) (*domain.StatusResponse, error) {
			t.Fatal("delete must not reach the API")
			return nil, nil
		},
		modifyFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			t.Fatal("modify must not reach the API")
			return nil, nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})

	err := s.DeleteWeightEntry(context.Background(), DeleteEntryRequest{Credentials: creds, Date: "someday"})
	require.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.True(t, s.DeleteLoading())

	err = s.ModifyWeightEntry(context.Background(), ModifyEntryRequest{Credentials: creds, Date: "someday", Weight: 72})
	require.ErrorIs(t, err, domain.ErrInvalidDate)
	assert.True(t, s.SaveLoading())

	assert.Equal(t, []domain.WeightEntry{{Date: "2023-06-01", Weight: 70}}, s.Entries())
	assert.Empty(t, sched.delays())
}

func TestAddWeightEntry_ConcurrentAddsBothAppend(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Entries(), 2)
	assert.False(t, s.AddLoading())
}

func TestDeleteWeightEntry_Success(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{
		deleteFn: func(_ context.Context, _, _, date string) (*domain.StatusResponse, error) {
			assert.Equal(t, "2023-06-01T12:00:00Z", date)
			return ok(), nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-02", Weight: 71})
	s.ShowDeleteModal()

	require.NoError(t, s.DeleteWeightEntry(context.Background(), DeleteEntryRequest{Credentials: creds, Date: "2023-06-01T12:00:00Z"}))

	assert.Equal(t, []domain.WeightEntry{{Date: "2023-06-02", Weight: 71}}, s.Entries())
	assert.False(t, s.DeleteLoading())
	assert.False(t, s.IsShowDeleteModal())
}

func TestDeleteWeightEntry_Rejected(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		deleteFn: func(context.Context, string, string, string) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})
	s.ShowDeleteModal()

	require.NoError(t, s.DeleteWeightEntry(context.Background(), DeleteEntryRequest{Credentials: creds, Date: "2023-06-01"}))

	assert.Len(t, s.Entries(), 1)
	assert.False(t, s.DeleteLoading())
	assert.True(t, s.IsShowDeleteModal())
	assert.Equal(t, "Failed to delete entry", s.Notification().Message)
	assert.Equal(t, []time.Duration{EntryDismissDelay}, sched.delays())
}

func TestDeleteWeightEntry_Non200LeavesLoadingSet(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{
		deleteFn: func(context.Context, string, string, string) (*domain.StatusResponse, error) {
			return &domain.StatusResponse{Status: http.StatusNoContent}, nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})

	require.NoError(t, s.DeleteWeightEntry(context.Background(), DeleteEntryRequest{Credentials: creds, Date: "2023-06-01"}))

	assert.Len(t, s.Entries(), 1)
	assert.True(t, s.DeleteLoading())
}

func TestModifyWeightEntry_Success(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{
		modifyFn: func(_ context.Context, _, _, date string, weight float64) (*domain.StatusResponse, error) {
			assert.Equal(t, "2023-06-01", date)
			assert.InDelta(t, 72.0, weight, 0)
			return ok(), nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})
	s.ShowDeleteModal()

	require.NoError(t, s.ModifyWeightEntry(context.Background(), ModifyEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 72}))

	assert.Equal(t, []domain.WeightEntry{{Date: "2023-06-01", Weight: 72}}, s.Entries())
	assert.False(t, s.SaveLoading())
	assert.False(t, s.IsShowDeleteModal(), "modify success closes the shared delete modal")
}

func TestModifyWeightEntry_Rejected(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		modifyFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})

	require.NoError(t, s.ModifyWeightEntry(context.Background(), ModifyEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 72}))

	assert.InDelta(t, 70.0, s.Entries()[0].Weight, 0)
	assert.False(t, s.SaveLoading())
	assert.Equal(t, "Failed to modify entry", s.Notification().Message)
	assert.Equal(t, []time.Duration{EntryDismissDelay}, sched.delays())
}

func TestModifyWeightEntry_Non200LeavesLoadingSet(t *testing.T) {
	s, _ := newTestStore(&fakeAPI{
		modifyFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return &domain.StatusResponse{Status: http.StatusCreated}, nil
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})

	require.NoError(t, s.ModifyWeightEntry(context.Background(), ModifyEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 72}))

	assert.InDelta(t, 70.0, s.Entries()[0].Weight, 0)
	assert.True(t, s.SaveLoading())
}

func TestDismissal_SurvivesInterveningSuccess(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})
	s.AddRecord(domain.WeightEntry{Date: "2023-06-01", Weight: 70})
	ctx := context.Background()

	require.NoError(t, s.AddWeightEntry(ctx, AddEntryRequest{Credentials: creds, Date: "2023-06-02", Weight: 71}))
	require.NoError(t, s.DeleteWeightEntry(ctx, DeleteEntryRequest{Credentials: creds, Date: "2023-06-01"}))

	assert.True(t, s.Notification().Visible)
	assert.Equal(t, "Failed to add entry", s.Notification().Message)
	assert.Empty(t, s.Entries())

	require.Len(t, sched.delays(), 1)
	sched.fire(0)
	assert.False(t, s.Notification().Visible)
}

func TestDismissal_EarlierTimerHidesLaterNotification(t *testing.T) {
	s, sched := newTestStore(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
		deleteFn: func(context.Context, string, string, string) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})
	ctx := context.Background()

	require.NoError(t, s.AddWeightEntry(ctx, AddEntryRequest{Credentials: creds, Date: "2023-06-02", Weight: 71}))
	require.NoError(t, s.DeleteWeightEntry(ctx, DeleteEntryRequest{Credentials: creds, Date: "2023-06-01"}))
	assert.Equal(t, "Failed to delete entry", s.Notification().Message)

	sched.fire(0)
	assert.False(t, s.Notification().Visible, "the add failure's timer hides the delete failure")
}

func TestDismissal_RealTimer(t *testing.T) {
	s := New(&fakeAPI{
		addFn: func(context.Context, string, string, string, float64) (*domain.StatusResponse, error) {
			return nil, errNetwork
		},
	})

	require.NoError(t, s.AddWeightEntry(context.Background(), AddEntryRequest{Credentials: creds, Date: "2023-06-01", Weight: 70}))
	assert.True(t, s.Notification().Visible)

	assert.Eventually(t, func() bool { return !s.Notification().Visible }, time.Second, 10*time.Millisecond)
}
