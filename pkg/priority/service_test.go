package priority

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindful/pkg/activity"
	"remindful/pkg/reminder"
)

type trackCall struct {
	id   string
	kind reminder.InteractionKind
	mins int
}

// mockStore is an in-memory reminder.Store covering only what the priority
// service touches. Everything else reports an error so an unexpected call
// shows up as a test failure.
type mockStore struct {
	open     []reminder.Reminder
	openErr  error
	batches  [][]reminder.ScoreUpdate
	scoreErr error
	tracked  []trackCall
	trackErr error
}

var errNotUsed = errors.New("unexpected store call")

func (m *mockStore) OpenAfter(ctx context.Context, now time.Time) ([]reminder.Reminder, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	out := make([]reminder.Reminder, len(m.open))
	copy(out, m.open)
	return out, nil
}

func (m *mockStore) UpdateScores(ctx context.Context, updates []reminder.ScoreUpdate) error {
	if m.scoreErr != nil {
		return m.scoreErr
	}
	m.batches = append(m.batches, updates)
	return nil
}

func (m *mockStore) Track(ctx context.Context, id string, kind reminder.InteractionKind, completionMinutes int) error {
	if m.trackErr != nil {
		return m.trackErr
	}
	m.tracked = append(m.tracked, trackCall{id: id, kind: kind, mins: completionMinutes})
	return nil
}

func (m *mockStore) Create(context.Context, *reminder.Reminder) (*reminder.Reminder, error) {
	return nil, errNotUsed
}
func (m *mockStore) Get(context.Context, string) (*reminder.Reminder, error) { return nil, errNotUsed }
func (m *mockStore) List(context.Context, reminder.ListFilter) ([]reminder.Reminder, error) {
	return nil, errNotUsed
}
func (m *mockStore) Update(context.Context, string, map[string]any) (*reminder.Reminder, error) {
	return nil, errNotUsed
}
func (m *mockStore) SetCompleted(context.Context, string, bool) (*reminder.Reminder, error) {
	return nil, errNotUsed
}
func (m *mockStore) Delete(context.Context, string) error { return errNotUsed }
func (m *mockStore) ActiveTemplates(context.Context, time.Time) ([]reminder.Reminder, error) {
	return nil, errNotUsed
}
func (m *mockStore) InstanceExistsOn(context.Context, string, time.Time) (bool, error) {
	return false, errNotUsed
}
func (m *mockStore) AdvanceTemplate(context.Context, string, time.Time) error { return errNotUsed }
func (m *mockStore) Stats(context.Context, string, time.Time) (*reminder.Stats, error) {
	return nil, errNotUsed
}
func (m *mockStore) Count(context.Context) (int, error) { return 0, errNotUsed }
func (m *mockStore) EnsureTable(context.Context) error  { return nil }

// mockActivity records appended entries and satisfies activity.Store.
type mockActivity struct {
	entries []activity.Entry
}

func (m *mockActivity) Append(ctx context.Context, entryType, reminderID, userID string, detail map[string]any) (*activity.Entry, error) {
	e := activity.Entry{Type: entryType, ReminderID: reminderID, UserID: userID, Detail: detail}
	m.entries = append(m.entries, e)
	return &e, nil
}
func (m *mockActivity) Recent(context.Context, int) ([]activity.Entry, error) { return nil, nil }
func (m *mockActivity) ByReminder(context.Context, string, int) ([]activity.Entry, error) {
	return nil, nil
}
func (m *mockActivity) ByUser(context.Context, string, int) ([]activity.Entry, error) {
	return nil, nil
}
func (m *mockActivity) Since(context.Context, string, int) ([]activity.Entry, error) {
	return nil, nil
}
func (m *mockActivity) Count(context.Context) (int, error) { return 0, nil }
func (m *mockActivity) EnsureTable(context.Context) error  { return nil }

func testService(st *mockStore, act *mockActivity) *Service {
	s := NewService(st, act, time.Minute)
	s.now = func() time.Time { return scoreNow }
	return s
}

// TestRecomputeAllPersistsScores runs one recompute pass over two open
// reminders and checks both scores land in a single batch with the values
// the pure scorer produces.
func TestRecomputeAllPersistsScores(t *testing.T) {
	st := &mockStore{open: []reminder.Reminder{
		{ID: "r1", Priority: reminder.PriorityUrgent, Category: reminder.CategoryWork, DueAt: due(30 * time.Minute)},
		{ID: "r2", Priority: reminder.PriorityLow, Category: reminder.CategoryPersonal, DueAt: due(100 * time.Hour)},
	}}
	act := &mockActivity{}

	testService(st, act).recomputeAll(context.Background())

	if len(st.batches) != 1 {
		t.Fatalf("want 1 batch, got %d", len(st.batches))
	}
	batch := st.batches[0]
	if len(batch) != 2 {
		t.Fatalf("want 2 updates, got %d", len(batch))
	}
	if batch[0].ID != "r1" || batch[1].ID != "r2" {
		t.Errorf("unexpected update ids: %s, %s", batch[0].ID, batch[1].ID)
	}

	// r1: 0.4*100 + 0.3*100 + 0.2*50 + 0.1*80 = 88
	if batch[0].SmartPriority.Score != 88 {
		t.Errorf("r1 score: want 88, got %d", batch[0].SmartPriority.Score)
	}
	// r2: 0.4*30 + 0.3*30 + 0.2*50 + 0.1*50 = 36
	if batch[1].SmartPriority.Score != 36 {
		t.Errorf("r2 score: want 36, got %d", batch[1].SmartPriority.Score)
	}

	if len(act.entries) != 1 || act.entries[0].Type != "priority.recalculated" {
		t.Fatalf("want one priority.recalculated entry, got %+v", act.entries)
	}
	if act.entries[0].Detail["count"] != 2 {
		t.Errorf("entry count detail: want 2, got %v", act.entries[0].Detail["count"])
	}
}

// TestRecomputeAllNothingOpen: an empty sweep writes nothing, logs nothing.
func TestRecomputeAllNothingOpen(t *testing.T) {
	st := &mockStore{}
	act := &mockActivity{}

	testService(st, act).recomputeAll(context.Background())

	if len(st.batches) != 0 {
		t.Errorf("expected no batches, got %d", len(st.batches))
	}
	if len(act.entries) != 0 {
		t.Errorf("expected no activity, got %d entries", len(act.entries))
	}
}

// TestRecomputeAllFetchError: a failed fetch skips the tick without
// attempting a persist.
func TestRecomputeAllFetchError(t *testing.T) {
	st := &mockStore{openErr: errors.New("connection refused")}

	testService(st, &mockActivity{}).recomputeAll(context.Background())

	if len(st.batches) != 0 {
		t.Errorf("expected no batches after fetch error, got %d", len(st.batches))
	}
}

func TestTrackInteraction(t *testing.T) {
	st := &mockStore{}
	act := &mockActivity{}
	s := testService(st, act)

	if err := s.TrackInteraction(context.Background(), "r1", reminder.InteractionSnooze, 0); err != nil {
		t.Fatalf("track: %v", err)
	}
	if len(st.tracked) != 1 || st.tracked[0].kind != reminder.InteractionSnooze || st.tracked[0].id != "r1" {
		t.Fatalf("unexpected track calls: %+v", st.tracked)
	}
	if len(act.entries) != 1 || act.entries[0].Type != "interaction.tracked" {
		t.Fatalf("want one interaction.tracked entry, got %+v", act.entries)
	}
}

// TestTrackInteractionComplete carries completion minutes into the
// activity detail.
func TestTrackInteractionComplete(t *testing.T) {
	st := &mockStore{}
	act := &mockActivity{}
	s := testService(st, act)

	if err := s.TrackInteraction(context.Background(), "r1", reminder.InteractionComplete, 45); err != nil {
		t.Fatalf("track: %v", err)
	}
	if st.tracked[0].mins != 45 {
		t.Errorf("completion minutes: want 45, got %d", st.tracked[0].mins)
	}
	if act.entries[0].Detail["completion_minutes"] != 45 {
		t.Errorf("detail minutes: want 45, got %v", act.entries[0].Detail["completion_minutes"])
	}
}

func TestTrackInteractionUnknownKind(t *testing.T) {
	st := &mockStore{}
	s := testService(st, &mockActivity{})

	if err := s.TrackInteraction(context.Background(), "r1", "poke", 0); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
	if len(st.tracked) != 0 {
		t.Errorf("unknown kind must not reach the store, got %+v", st.tracked)
	}
}
