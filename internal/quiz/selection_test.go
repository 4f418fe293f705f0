package quiz_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukamv/studysuite/internal/models"
	"github.com/lukamv/studysuite/internal/progress"
	"github.com/lukamv/studysuite/internal/quiz"
)

func bank(n int) []models.Question {
	out := make([]models.Question, n)
	for i := range out {
		out[i] = models.Question{
			ID:     strconv.Itoa(i + 1),
			IsCalc: (i+1)%2 == 0, // even ids are calculation questions
		}
	}
	return out
}

func ids(qs []models.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, quiz.ModeAll, quiz.ParseMode(""))
	assert.Equal(t, quiz.ModeAll, quiz.ParseMode("nonsense"))
	assert.Equal(t, quiz.ModeWrong, quiz.ParseMode("wrong_only"))
	assert.Equal(t, quiz.ModeRandomN, quiz.ParseMode("  Random_N "))
}

func TestFilterPool_All(t *testing.T) {
	pool := quiz.FilterPool(bank(10), quiz.Selection{Mode: quiz.ModeAll}, progress.NewSnapshot())
	assert.Len(t, pool, 10)
}

func TestFilterPool_Range(t *testing.T) {
	sel := quiz.Selection{Mode: quiz.ModeRange, RangeStart: 3, RangeEnd: 5}
	pool := quiz.FilterPool(bank(10), sel, progress.NewSnapshot())
	assert.Equal(t, []string{"3", "4", "5"}, ids(pool))
}

func TestFilterPool_RangeSwapped(t *testing.T) {
	sel := quiz.Selection{Mode: quiz.ModeRange, RangeStart: 5, RangeEnd: 3}
	pool := quiz.FilterPool(bank(10), sel, progress.NewSnapshot())
	assert.Equal(t, []string{"3", "4", "5"}, ids(pool), "inverted bounds are swapped")
}

func TestFilterPool_WrongOnly(t *testing.T) {
	snap := progress.NewSnapshot()
	snap.WrongIDs = progress.NewIDSet("2", "7")

	pool := quiz.FilterPool(bank(10), quiz.Selection{Mode: quiz.ModeWrong}, snap)
	assert.Equal(t, []string{"2", "7"}, ids(pool))
}

func TestFilterPool_NotDoneYet(t *testing.T) {
	snap := progress.NewSnapshot()
	snap.SeenIDs = progress.NewIDSet("1", "2", "3", "4", "5", "6", "7", "8")

	pool := quiz.FilterPool(bank(10), quiz.Selection{Mode: quiz.ModeUnseen}, snap)
	assert.Equal(t, []string{"9", "10"}, ids(pool))
}

func TestFilterPool_CalcModes(t *testing.T) {
	calc := quiz.FilterPool(bank(6), quiz.Selection{Mode: quiz.ModeCalc}, progress.NewSnapshot())
	assert.Equal(t, []string{"2", "4", "6"}, ids(calc))

	nonCalc := quiz.FilterPool(bank(6), quiz.Selection{Mode: quiz.ModeNonCalc}, progress.NewSnapshot())
	assert.Equal(t, []string{"1", "3", "5"}, ids(nonCalc))
}

func TestOrderIDs_NaturalOrder(t *testing.T) {
	order := quiz.OrderIDs(bank(5), quiz.Selection{Mode: quiz.ModeAll}, rand.New(rand.NewSource(1)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, order)
}

func TestOrderIDs_ShuffleIsPermutation(t *testing.T) {
	order := quiz.OrderIDs(bank(20), quiz.Selection{Mode: quiz.ModeAll, Shuffle: true}, rand.New(rand.NewSource(42)))

	require.Len(t, order, 20)
	assert.ElementsMatch(t, ids(bank(20)), order)
}

func TestOrderIDs_RandomN(t *testing.T) {
	sel := quiz.Selection{Mode: quiz.ModeRandomN, RandomN: 5}
	order := quiz.OrderIDs(bank(20), sel, rand.New(rand.NewSource(7)))

	require.Len(t, order, 5)
	assert.Subset(t, ids(bank(20)), order)
}

func TestOrderIDs_RandomNClamped(t *testing.T) {
	sel := quiz.Selection{Mode: quiz.ModeRandomN, RandomN: 50}
	order := quiz.OrderIDs(bank(3), sel, rand.New(rand.NewSource(7)))
	assert.Len(t, order, 3)

	sel.RandomN = 0
	order = quiz.OrderIDs(bank(20), sel, rand.New(rand.NewSource(7)))
	assert.Len(t, order, 10, "default sample size")
}

func TestOrderByIDs_ProjectsAndDropsStaleIDs(t *testing.T) {
	pool := bank(5)
	wl := quiz.OrderByIDs(pool, []string{"4", "2", "99"})

	assert.Equal(t, []string{"4", "2"}, ids(wl))
}

func TestJumpTo_Exact(t *testing.T) {
	wl := bank(10)

	idx, exact := quiz.JumpTo(wl, "7")
	assert.True(t, exact)
	assert.Equal(t, 6, idx)

	idx, exact = quiz.JumpTo(wl, "Q7")
	assert.True(t, exact)
	assert.Equal(t, 6, idx)
}

func TestJumpTo_NearestFallback(t *testing.T) {
	wl := quiz.OrderByIDs(bank(100), []string{"10", "20", "50"})

	idx, exact := quiz.JumpTo(wl, "24")
	assert.False(t, exact)
	assert.Equal(t, 1, idx, "20 is nearest to 24")
}

func TestJumpTo_NoDigits(t *testing.T) {
	idx, exact := quiz.JumpTo(bank(5), "go to start")
	assert.False(t, exact)
	assert.Zero(t, idx)
}
