package quiz

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/progress"
)

// Mode selects which slice of the question bank a practice session works
// through.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeRange   Mode = "range"
	ModeRandomN Mode = "random_n"
	ModeWrong   Mode = "wrong_only"
	ModeUnseen  Mode = "not_done_yet"
	ModeCalc    Mode = "calc_only"
	ModeNonCalc Mode = "non_calc_only"
)

// ParseMode maps a request parameter to a Mode, defaulting to ModeAll.
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeRange, ModeRandomN, ModeWrong, ModeUnseen, ModeCalc, ModeNonCalc:
		return m
	default:
		return ModeAll
	}
}

// Selection describes a practice worklist: the mode plus its parameters.
type Selection struct {
	Mode       Mode `json:"mode"`
	RangeStart int  `json:"range_start,omitempty"`
	RangeEnd   int  `json:"range_end,omitempty"`
	RandomN    int  `json:"random_n,omitempty"`
	Shuffle    bool `json:"shuffle,omitempty"`
}

// Fingerprint identifies a selection so a cached ordering can be reused
// until the settings change.
func (s Selection) Fingerprint() string {
	return fmt.Sprintf("%s|%d|%d|%d|%t", s.Mode, s.RangeStart, s.RangeEnd, s.RandomN, s.Shuffle)
}

// idToInt parses a numeric question id, returning -1 for anything else so
// non-numeric ids sort out of every range.
func idToInt(id string) int {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return -1
	}
	return n
}

// FilterPool narrows the bank to the questions the selection's mode admits,
// keeping bank order. Wrong/unseen modes consult the working snapshot's sets.
func FilterPool(questions []models.Question, sel Selection, snap progress.Snapshot) []models.Question {
	var keep func(models.Question) bool
	switch sel.Mode {
	case ModeRange:
		start, end := sel.RangeStart, sel.RangeEnd
		if start <= 0 {
			start = 1
		}
		if end < start {
			start, end = end, start
		}
		keep = func(q models.Question) bool {
			n := idToInt(q.ID)
			return n >= start && n <= end
		}
	case ModeWrong:
		keep = func(q models.Question) bool { return snap.WrongIDs.Has(q.ID) }
	case ModeUnseen:
		keep = func(q models.Question) bool { return !snap.SeenIDs.Has(q.ID) }
	case ModeCalc:
		keep = func(q models.Question) bool { return q.IsCalc }
	case ModeNonCalc:
		keep = func(q models.Question) bool { return !q.IsCalc }
	default: // ModeAll and ModeRandomN sample from the whole bank
		keep = func(models.Question) bool { return true }
	}

	out := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

// OrderIDs decides the worklist order for a freshly applied selection:
// a random sample of n for ModeRandomN, otherwise the pool order with an
// optional shuffle. The result is cached by the session and reused until the
// selection fingerprint changes.
func OrderIDs(pool []models.Question, sel Selection, rng *rand.Rand) []string {
	ids := make([]string, len(pool))
	for i, q := range pool {
		ids[i] = q.ID
	}

	if sel.Mode == ModeRandomN {
		n := sel.RandomN
		if n <= 0 {
			n = 10
		}
		if n > len(ids) {
			n = len(ids)
		}
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		return ids[:n]
	}

	if sel.Shuffle {
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	return ids
}

// OrderByIDs projects the pool onto the cached id order, dropping ids no
// longer in the pool (e.g. a corrected question leaving wrong-only mode).
func OrderByIDs(pool []models.Question, ids []string) []models.Question {
	byID := make(map[string]models.Question, len(pool))
	for _, q := range pool {
		byID[q.ID] = q
	}
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

var jumpDigitsRe = regexp.MustCompile(`(\d+)`)

// JumpTo resolves a "47" or "Q47" style query to a worklist index. When the
// requested id is not in the current selection it falls back to the nearest
// id and reports exact=false.
func JumpTo(worklist []models.Question, query string) (idx int, exact bool) {
	m := jumpDigitsRe.FindString(query)
	if m == "" || len(worklist) == 0 {
		return 0, false
	}
	wanted, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}

	nearest, nearestDist := 0, -1
	for i, q := range worklist {
		n := idToInt(q.ID)
		if n == wanted {
			return i, true
		}
		dist := n - wanted
		if dist < 0 {
			dist = -dist
		}
		if nearestDist < 0 || dist < nearestDist {
			nearest, nearestDist = i, dist
		}
	}
	return nearest, false
}
