package progress

import (
	"encoding/json"
	"sort"
)

// IDSet is a set of opaque question identifiers.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Remove deletes id from the set, if present.
func (s IDSet) Remove(id string) {
	delete(s, id)
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy of the set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union returns a new set with every id from s and other.
func (s IDSet) Union(other IDSet) IDSet {
	out := s.Clone()
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids as a sorted slice, never nil.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted JSON array, the same shape the
// remote row stores.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a JSON array of ids, dropping empties.
func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// DeckTally is a per-deck attempts/correct pair. It is session-local
// bookkeeping only and never written to the remote row.
type DeckTally struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
}

// Snapshot is the full progress record for one user at one point in time.
// Three copies exist during a session: the remote row, the session baseline,
// and the working copy the UI mutates.
type Snapshot struct {
	Attempts int                  `json:"attempts"`
	Correct  int                  `json:"correct"`
	SeenIDs  IDSet                `json:"seen_ids"`
	WrongIDs IDSet                `json:"wrong_ids"`
	ByDeck   map[string]DeckTally `json:"by_deck,omitempty"`
}

// NewSnapshot returns an empty snapshot with allocated sets.
func NewSnapshot() Snapshot {
	return Snapshot{
		SeenIDs:  make(IDSet),
		WrongIDs: make(IDSet),
	}
}

// Normalize coerces a snapshot with missing or malformed fields into a
// well-formed one: nil sets become empty, negative counters become zero.
func Normalize(s Snapshot) Snapshot {
	out := s
	if out.Attempts < 0 {
		out.Attempts = 0
	}
	if out.Correct < 0 {
		out.Correct = 0
	}
	if out.SeenIDs == nil {
		out.SeenIDs = make(IDSet)
	}
	if out.WrongIDs == nil {
		out.WrongIDs = make(IDSet)
	}
	return out
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Attempts: s.Attempts,
		Correct:  s.Correct,
		SeenIDs:  s.SeenIDs.Clone(),
		WrongIDs: s.WrongIDs.Clone(),
	}
	if s.ByDeck != nil {
		out.ByDeck = make(map[string]DeckTally, len(s.ByDeck))
		for k, v := range s.ByDeck {
			out.ByDeck[k] = v
		}
	}
	return out
}

// flattened returns a copy without the per-deck breakdown. Baselines are
// stored flattened so delta computation only ever concerns the top-level
// counters and sets.
func (s Snapshot) flattened() Snapshot {
	out := s.Clone()
	out.ByDeck = nil
	return out
}

// RecordAnswer folds one graded answer into a working copy: attempts always
// increment, correct increments on a right answer, the question becomes seen,
// and its wrong marker follows the most recent verdict.
func (s *Snapshot) RecordAnswer(questionID, deckID string, correct bool) {
	if s.SeenIDs == nil {
		s.SeenIDs = make(IDSet)
	}
	if s.WrongIDs == nil {
		s.WrongIDs = make(IDSet)
	}

	s.Attempts++
	if correct {
		s.Correct++
	}

	s.SeenIDs.Add(questionID)
	if correct {
		s.WrongIDs.Remove(questionID)
	} else {
		s.WrongIDs.Add(questionID)
	}

	if deckID != "" {
		if s.ByDeck == nil {
			s.ByDeck = make(map[string]DeckTally)
		}
		tally := s.ByDeck[deckID]
		tally.Attempts++
		if correct {
			tally.Correct++
		}
		s.ByDeck[deckID] = tally
	}
}

// Accuracy returns the fraction of correct answers, or 0 with no attempts.
func (s Snapshot) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}
