package progress_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukamv/studysuite/internal/progress"
)

// memStore is an in-memory progress.Store standing in for the remote row.
// It supports fault injection so degrade paths can be exercised.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]progress.Snapshot
	fetchErr  error
	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]progress.Snapshot)}
}

func (m *memStore) Fetch(_ context.Context, userID string) (progress.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return progress.Snapshot{}, m.fetchErr
	}
	row, ok := m.rows[userID]
	if !ok {
		return progress.NewSnapshot(), nil
	}
	return row.Clone(), nil
}

func (m *memStore) Upsert(_ context.Context, userID string, snap progress.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[userID] = snap.Clone()
	return nil
}

func (m *memStore) row(t *testing.T, userID string) progress.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	require.True(t, ok, "no remote row for %s", userID)
	return row.Clone()
}

func snapshot(attempts, correct int, seen, wrong []string) progress.Snapshot {
	return progress.Snapshot{
		Attempts: attempts,
		Correct:  correct,
		SeenIDs:  progress.NewIDSet(seen...),
		WrongIDs: progress.NewIDSet(wrong...),
	}
}

func TestLoad_RequiresIdentity(t *testing.T) {
	r := progress.NewReconciler(newMemStore())

	_, err := r.Load(context.Background(), "")

	assert.ErrorIs(t, err, progress.ErrUnauthenticated)
}

func TestSave_RequiresIdentity(t *testing.T) {
	r := progress.NewReconciler(newMemStore())

	_, _, err := r.Save(context.Background(), "", progress.NewSnapshot())

	assert.ErrorIs(t, err, progress.ErrUnauthenticated)
}

func TestLoad_NewUserGetsEmptySnapshot(t *testing.T) {
	r := progress.NewReconciler(newMemStore())

	got, err := r.Load(context.Background(), "u1")

	require.NoError(t, err)
	assert.Zero(t, got.Attempts)
	assert.Zero(t, got.Correct)
	assert.Empty(t, got.SeenIDs)
	assert.Empty(t, got.WrongIDs)
}

func TestLoad_Idempotent(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1", "2", "3"}, []string{"2", "3"})
	r := progress.NewReconciler(store)

	first, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	second, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first.Attempts, second.Attempts)
	assert.Equal(t, first.Correct, second.Correct)
	assert.Equal(t, first.SeenIDs.Sorted(), second.SeenIDs.Sorted())
	assert.Equal(t, first.WrongIDs.Sorted(), second.WrongIDs.Sorted())
}

// The worked example: remote and baseline agree, the session answers
// question 2 correctly, and the save must clear 2 from the wrong set.
func TestSave_CorrectedAnswerScenario(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1", "2", "3"}, []string{"2", "3"})
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)

	working.RecordAnswer("2", "", true)

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)

	assert.Equal(t, 11, merged.Attempts)
	assert.Equal(t, 8, merged.Correct)
	assert.Equal(t, []string{"1", "2", "3"}, merged.SeenIDs.Sorted())
	assert.Equal(t, []string{"3"}, merged.WrongIDs.Sorted())

	row := store.row(t, "u1")
	assert.Equal(t, 11, row.Attempts)
	assert.Equal(t, []string{"3"}, row.WrongIDs.Sorted())
}

func TestSave_FirstEverSave(t *testing.T) {
	store := newMemStore()
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	working.RecordAnswer("5", "", true)

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)

	assert.Equal(t, 1, merged.Attempts)
	assert.Equal(t, 1, merged.Correct)
	assert.Equal(t, []string{"5"}, merged.SeenIDs.Sorted())
	assert.Empty(t, merged.WrongIDs)
}

func TestSave_RepeatedSaveDoesNotDoubleCount(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1"}, nil)
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	working.RecordAnswer("2", "", false)

	first, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)
	assert.Equal(t, 11, first.Attempts)

	// No intervening local mutation: the baseline advanced, deltas are zero.
	second, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)
	assert.Equal(t, 11, second.Attempts)
	assert.Equal(t, 7, second.Correct)
	assert.Equal(t, 11, store.row(t, "u1").Attempts)
}

// Two sessions for the same user, both starting from R0. A saves first, then
// B saves against the post-A remote using B's own baseline. Neither
// contribution may be lost.
func TestSave_CrossSessionAdditivity(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1"}, nil)

	sessionA := progress.NewReconciler(store)
	sessionB := progress.NewReconciler(store)

	workingA, err := sessionA.Load(context.Background(), "u1")
	require.NoError(t, err)
	workingB, err := sessionB.Load(context.Background(), "u1")
	require.NoError(t, err)

	// A answers two questions, one correctly.
	workingA.RecordAnswer("2", "", true)
	workingA.RecordAnswer("3", "", false)
	// B answers one question correctly.
	workingB.RecordAnswer("4", "", true)

	_, _, err = sessionA.Save(context.Background(), "u1", workingA)
	require.NoError(t, err)
	merged, _, err := sessionB.Save(context.Background(), "u1", workingB)
	require.NoError(t, err)

	assert.Equal(t, 10+2+1, merged.Attempts, "R0 + a1 + a2")
	assert.Equal(t, 7+1+1, merged.Correct, "R0 + c1 + c2")
	assert.Equal(t, []string{"1", "2", "3", "4"}, merged.SeenIDs.Sorted())
	assert.Equal(t, []string{"3"}, merged.WrongIDs.Sorted())
}

func TestSave_LocalVerdictWinsOverRemoteWrongMarker(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(5, 2, []string{"X"}, []string{"X"})
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	working.RecordAnswer("X", "", true)

	// A stale session re-asserts X as wrong on the remote row in between.
	store.rows["u1"] = snapshot(6, 2, []string{"X"}, []string{"X"})

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)

	assert.False(t, merged.WrongIDs.Has("X"), "session saw X and corrected it")
	assert.False(t, store.row(t, "u1").WrongIDs.Has("X"))
}

func TestSave_UntouchedIDsKeepRemoteWrongMarker(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(5, 2, []string{"X", "Y"}, []string{"X", "Y"})
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	// The session re-answers X correctly but did not touch Y this session...
	working.SeenIDs = progress.NewIDSet("X")
	working.WrongIDs = progress.NewIDSet()
	working.Attempts++
	working.Correct++

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)

	assert.False(t, merged.WrongIDs.Has("X"))
	assert.True(t, merged.WrongIDs.Has("Y"), "ids outside the session's seen set keep the remote verdict")
}

func TestSave_FetchFailureDegradesToOverwrite(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1"}, nil)
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	working.RecordAnswer("2", "", true)

	// Remote reads start failing; the save proceeds against the zero snapshot.
	store.mu.Lock()
	store.fetchErr = errors.New("network down")
	store.mu.Unlock()

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err, "read failures never surface from save")

	assert.Equal(t, 1, merged.Attempts, "delta applied onto the substituted empty remote")
	assert.Equal(t, 1, merged.Correct)
	assert.Equal(t, []string{"1", "2"}, merged.SeenIDs.Sorted())
}

func TestSave_UpsertFailureKeepsDeltaWindowOpen(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, nil, nil)
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)
	working.RecordAnswer("2", "", true)

	store.mu.Lock()
	store.upsertErr = errors.New("write refused")
	store.mu.Unlock()

	merged, persisted, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err, "write failures degrade to a warning")
	assert.False(t, persisted)
	assert.Equal(t, 11, merged.Attempts, "merged result still returned to the caller")
	assert.Equal(t, 10, store.row(t, "u1").Attempts, "remote row unchanged")

	// Write recovers; the baseline was not advanced, so the same delta lands
	// exactly once.
	store.mu.Lock()
	store.upsertErr = nil
	store.mu.Unlock()

	merged, persisted, err = r.Save(context.Background(), "u1", working)
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, 11, merged.Attempts)
	assert.Equal(t, 11, store.row(t, "u1").Attempts)
}

func TestSave_BeforeLoadCapturesImplicitBaseline(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1"}, nil)
	r := progress.NewReconciler(store)

	// The working copy carries what the session believes without ever loading.
	working := snapshot(10, 7, []string{"1"}, nil)
	working.RecordAnswer("2", "", true)

	merged, _, err := r.Save(context.Background(), "u1", working)
	require.NoError(t, err)

	// Baseline was captured from the remote row before merging, so only the
	// genuine local gain is added.
	assert.Equal(t, 11, merged.Attempts)
	assert.Equal(t, 8, merged.Correct)
}

func TestSave_LocalResetNeverSubtracts(t *testing.T) {
	store := newMemStore()
	store.rows["u1"] = snapshot(10, 7, []string{"1", "2"}, []string{"2"})
	r := progress.NewReconciler(store)

	_, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)

	// The session resets its working copy to zero and saves.
	merged, _, err := r.Save(context.Background(), "u1", progress.NewSnapshot())
	require.NoError(t, err)

	assert.Equal(t, 10, merged.Attempts, "clamped deltas keep remote counters monotonic")
	assert.Equal(t, 7, merged.Correct)
	assert.Equal(t, []string{"1", "2"}, merged.SeenIDs.Sorted())
	assert.Equal(t, []string{"2"}, merged.WrongIDs.Sorted(), "empty seen set corrects nothing")
}

func TestSave_MonotonicCountersAcrossSaves(t *testing.T) {
	store := newMemStore()
	r := progress.NewReconciler(store)

	working, err := r.Load(context.Background(), "u1")
	require.NoError(t, err)

	prevAttempts, prevCorrect := 0, 0
	answers := []struct {
		id      string
		correct bool
	}{
		{"1", true}, {"2", false}, {"2", true}, {"3", false}, {"4", true},
	}
	for _, a := range answers {
		working.RecordAnswer(a.id, "", a.correct)
		merged, _, err := r.Save(context.Background(), "u1", working)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, merged.Attempts, prevAttempts)
		assert.GreaterOrEqual(t, merged.Correct, prevCorrect)
		assert.LessOrEqual(t, merged.Correct, merged.Attempts)
		prevAttempts, prevCorrect = merged.Attempts, merged.Correct
	}

	assert.Equal(t, 5, prevAttempts)
	assert.Equal(t, 3, prevCorrect)
}

func TestMerge_Idempotent(t *testing.T) {
	remote := snapshot(10, 7, []string{"1", "2", "3"}, []string{"2", "3"})
	baseline := snapshot(10, 7, []string{"1", "2", "3"}, []string{"2", "3"})
	working := snapshot(11, 8, []string{"1", "2", "3"}, []string{"3"})

	first := progress.Merge(remote, baseline, working)
	second := progress.Merge(remote, baseline, working)

	assert.Equal(t, first.Attempts, second.Attempts)
	assert.Equal(t, first.SeenIDs.Sorted(), second.SeenIDs.Sorted())
	assert.Equal(t, first.WrongIDs.Sorted(), second.WrongIDs.Sorted())
}

func TestMerge_NormalizesMalformedInputs(t *testing.T) {
	merged := progress.Merge(
		progress.Snapshot{Attempts: -1},
		progress.Snapshot{},
		progress.Snapshot{Attempts: 2, Correct: 1, SeenIDs: progress.NewIDSet("9")},
	)

	assert.Equal(t, 2, merged.Attempts)
	assert.Equal(t, 1, merged.Correct)
	assert.Equal(t, []string{"9"}, merged.SeenIDs.Sorted())
	assert.NotNil(t, merged.WrongIDs)
}

func TestMerge_DropsPerDeckBreakdown(t *testing.T) {
	working := snapshot(1, 1, []string{"1"}, nil)
	working.ByDeck = map[string]progress.DeckTally{"deck-1": {Attempts: 1, Correct: 1}}

	merged := progress.Merge(progress.NewSnapshot(), progress.NewSnapshot(), working)

	assert.Nil(t, merged.ByDeck, "per-deck tallies stay session-local")
}
