package analytics

import (
	"github.com/nayan947211-pixel/study-buddy/internal/models"
)

// Recompute recalculates every derived total from the record's event lists.
// It is a pure function of the current state: running it twice without new
// events yields identical output, and the sums are order-independent.
func Recompute(rec *models.AnalyticsRecord) {
	rec.TotalQuizzesTaken = len(rec.QuizAttempts)

	if len(rec.QuizAttempts) > 0 {
		var totalPercentage float64
		for _, attempt := range rec.QuizAttempts {
			totalPercentage += attempt.Percentage
		}
		rec.AverageQuizScore = totalPercentage / float64(len(rec.QuizAttempts))
	} else {
		rec.AverageQuizScore = 0
	}

	totalCards := 0
	for _, session := range rec.FlashcardSessions {
		totalCards += session.CardsReviewed
	}
	rec.TotalFlashcardsReviewed = totalCards

	totalMinutes := 0
	for _, session := range rec.StudySessions {
		totalMinutes += session.DurationMinutes
	}
	rec.TotalStudyTimeMinutes = totalMinutes
}
