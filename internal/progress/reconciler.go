package progress

import (
	"context"
	"errors"
	"sync"

	"github.com/lukamv/studysuite/internal/logger"
)

// ErrUnauthenticated is returned when no user identity is available. It is
// the only error a caller sees from Load/Save; every remote failure degrades
// to best-effort local state instead.
var ErrUnauthenticated = errors.New("progress: no authenticated user")

// Store is the durable read/write boundary for one progress row per user.
//
// Fetch returns the normalized zero snapshot when no row exists; transient
// read failures may surface as errors, which the reconciler absorbs.
// Upsert replaces the whole row unconditionally; the reconciler's delta
// merge is what makes the blind overwrite safe across sessions.
type Store interface {
	Fetch(ctx context.Context, userID string) (Snapshot, error)
	Upsert(ctx context.Context, userID string, snap Snapshot) error
}

// Reconciler combines a session's local progress with the remote row without
// losing attempts or wrong-answer corrections from concurrent sessions.
//
// It owns the session baseline: the snapshot last known to match the remote
// row. Deltas are computed against the baseline and added onto a freshly
// fetched remote snapshot, so two sessions for the same user can both save
// and neither clobbers the other's counters.
type Reconciler struct {
	mu       sync.Mutex
	store    Store
	log      *logger.Logger
	baseline *Snapshot
}

// NewReconciler creates a session-scoped reconciler backed by store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		log:   logger.Default().WithPrefix("progress"),
	}
}

// Load fetches the remote snapshot, records it as the session baseline, and
// returns it as the initial working copy. Calling it again with no
// intervening mutations just re-syncs the baseline to the same remote state.
func (r *Reconciler) Load(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrUnauthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remote := r.fetchRemote(ctx, userID)
	baseline := remote.Clone()
	r.baseline = &baseline

	r.log.Debug("loaded progress: user=%s attempts=%d correct=%d seen=%d wrong=%d",
		userID, remote.Attempts, remote.Correct, len(remote.SeenIDs), len(remote.WrongIDs))
	return remote, nil
}

// Save merges the working copy with the current remote row and writes the
// result back. The merged snapshot is always returned; persisted reports
// whether the write landed. On a failed write the baseline is left untouched
// so the next save retries the same delta window — callers must likewise
// keep their working copy as-is, or the retried delta would re-add the
// other sessions' contributions folded into the merged snapshot.
func (r *Reconciler) Save(ctx context.Context, userID string, working Snapshot) (merged Snapshot, persisted bool, err error) {
	if userID == "" {
		return Snapshot{}, false, ErrUnauthenticated
	}
	log := logger.FromContext(ctx).WithPrefix("progress")

	r.mu.Lock()
	defer r.mu.Unlock()

	// Guard against save-before-load: adopt the current remote state as the
	// baseline so this save's deltas are computed against something real.
	if r.baseline == nil {
		log.Debug("save before load, capturing baseline first: user=%s", userID)
		baseline := r.fetchRemote(ctx, userID)
		r.baseline = &baseline
	}

	remote := r.fetchRemote(ctx, userID)
	merged = Merge(remote, *r.baseline, working)

	if err := r.store.Upsert(ctx, userID, merged); err != nil {
		// Keep the old baseline; the unsaved delta window stays open and the
		// next save carries it again.
		log.Warn("progress save failed, keeping local state for retry: user=%s err=%v", userID, err)
		return merged, false, nil
	}

	baseline := merged.Clone()
	r.baseline = &baseline

	log.Debug("saved progress: user=%s attempts=%d correct=%d seen=%d wrong=%d",
		userID, merged.Attempts, merged.Correct, len(merged.SeenIDs), len(merged.WrongIDs))
	return merged, true, nil
}

// fetchRemote reads the remote snapshot, degrading to the zero snapshot on
// any failure so a flaky network never blocks the user's session.
func (r *Reconciler) fetchRemote(ctx context.Context, userID string) Snapshot {
	snap, err := r.store.Fetch(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress").
			Warn("could not read remote progress, assuming empty: user=%s err=%v", userID, err)
		return NewSnapshot()
	}
	return Normalize(snap)
}

// Merge folds a session's progress into a freshly fetched remote snapshot.
//
// Counters: the working copy's gain over the baseline (clamped at zero, so a
// local reset never subtracts from remote totals) is added to the remote
// counters. Addition commutes, which is what preserves both sessions'
// contributions whichever write lands last.
//
// seen_ids: plain union; having seen a question is monotonic.
//
// wrong_ids: union of remote and local, minus every id this session has seen
// and does not currently consider wrong. The session's verdict wins for ids
// it touched, even when a staler session re-wrote the remote row in between.
// Ids this session never touched keep whatever the remote row says.
//
// The merged snapshot carries no per-deck breakdown; that stays local.
func Merge(remote, baseline, working Snapshot) Snapshot {
	remote = Normalize(remote)
	baseline = Normalize(baseline)
	working = Normalize(working)

	dAttempts := working.Attempts - baseline.Attempts
	if dAttempts < 0 {
		dAttempts = 0
	}
	dCorrect := working.Correct - baseline.Correct
	if dCorrect < 0 {
		dCorrect = 0
	}

	merged := Snapshot{
		Attempts: remote.Attempts + dAttempts,
		Correct:  remote.Correct + dCorrect,
		SeenIDs:  remote.SeenIDs.Union(working.SeenIDs),
		WrongIDs: remote.WrongIDs.Union(working.WrongIDs),
	}

	for id := range working.SeenIDs {
		if !working.WrongIDs.Has(id) {
			merged.WrongIDs.Remove(id)
		}
	}
	return merged
}
