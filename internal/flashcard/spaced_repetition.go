package flashcard

import (
	"time"

	"github.com/lukamv/studysuite/internal/models"
)

// Review grades follow the four-button scale shown to the student.
const (
	GradeAgain = 0
	GradeHard  = 1
	GradeGood  = 2
	GradeEasy  = 3
)

// ValidGrade reports whether q is one of the accepted review grades.
func ValidGrade(q int) bool {
	return q >= GradeAgain && q <= GradeEasy
}

// ApplyReview updates card scheduling using SM-2 variant.
// quality: 0=Again, 1=Hard, 2=Good, 3=Easy
func ApplyReview(card models.Card, quality int) models.Card {
	const minEase = 1.3
	ef := card.EaseFactor
	ef = ef + 0.1 - float64(GradeEasy-quality)*(0.08+float64(GradeEasy-quality)*0.02)
	if ef < minEase {
		ef = minEase
	}

	interval := 1
	switch {
	case quality < GradeGood:
		interval = 1
	case card.IntervalDays == 0:
		interval = 1
	case card.IntervalDays == 1:
		interval = 6
	default:
		interval = int(float64(card.IntervalDays) * ef)
	}

	card.TimesReviewed++
	if quality >= GradeGood {
		card.TimesCorrect++
	} else {
		card.TimesCorrect = 0
	}
	card.IntervalDays = interval
	card.EaseFactor = ef
	card.DueAt = time.Now().Add(time.Duration(interval) * 24 * time.Hour)
	return card
}
