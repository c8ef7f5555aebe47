package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/queue"
	"github.com/nayan947211-pixel/study-buddy/internal/services/ai"
)

// ContentGenerator processes quiz and flashcard generation jobs
type ContentGenerator struct {
	aiProvider    ai.AIProvider
	quizRepo      database.QuizRepositoryInterface
	flashcardRepo database.FlashcardRepositoryInterface
	jobQueue      queue.JobQueue // For re-enqueueing jobs with delays
}

// NewContentGenerator creates a new content generator
func NewContentGenerator(
	aiProvider ai.AIProvider,
	quizRepo database.QuizRepositoryInterface,
	flashcardRepo database.FlashcardRepositoryInterface,
	jobQueue queue.JobQueue,
) *ContentGenerator {
	return &ContentGenerator{
		aiProvider:    aiProvider,
		quizRepo:      quizRepo,
		flashcardRepo: flashcardRepo,
		jobQueue:      jobQueue,
	}
}

// ProcessQuizGenerationJob generates questions for a pending quiz
func (g *ContentGenerator) ProcessQuizGenerationJob(ctx context.Context, job *queue.Job) error {
	quiz, err := g.quizRepo.GetByID(ctx, job.TargetID)
	if err != nil {
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.UserID != job.UserID {
		return fmt.Errorf("quiz does not belong to user")
	}

	if quiz.Status == models.GenerationStatusReady {
		log.Printf("Quiz %s already generated, skipping", quiz.ID)
		return nil
	}

	if err := g.quizRepo.SetStatus(ctx, quiz.ID, models.GenerationStatusProcessing); err != nil {
		log.Printf("Failed to set quiz %s status to processing: %v", quiz.ID, err)
		// Continue with generation even if status update fails
	}

	count := questionCountFromJob(job)

	genCtx := ai.WithTargetID(ai.WithUserID(ctx, job.UserID.String()), quiz.ID.String())
	questions, err := g.aiProvider.GenerateQuiz(genCtx, quiz.Title, quiz.SourceText, count, quiz.Difficulty)
	if err != nil {
		// Back to pending so the job can be retried
		if statusErr := g.quizRepo.SetStatus(ctx, quiz.ID, models.GenerationStatusPending); statusErr != nil {
			log.Printf("Failed to reset quiz %s status to pending after error: %v", quiz.ID, statusErr)
		}
		return fmt.Errorf("failed to generate quiz: %w", err)
	}

	if err := g.quizRepo.SetQuestions(ctx, quiz.ID, questions); err != nil {
		return fmt.Errorf("failed to save quiz questions: %w", err)
	}

	log.Printf("Generated quiz %s: %d questions", quiz.ID, len(questions))
	return nil
}

// ProcessFlashcardGenerationJob generates cards for a pending flashcard set
func (g *ContentGenerator) ProcessFlashcardGenerationJob(ctx context.Context, job *queue.Job) error {
	set, err := g.flashcardRepo.GetByID(ctx, job.TargetID)
	if err != nil {
		return fmt.Errorf("failed to get flashcard set: %w", err)
	}

	if set.UserID != job.UserID {
		return fmt.Errorf("flashcard set does not belong to user")
	}

	if set.Status == models.GenerationStatusReady {
		log.Printf("Flashcard set %s already generated, skipping", set.ID)
		return nil
	}

	if err := g.flashcardRepo.SetStatus(ctx, set.ID, models.GenerationStatusProcessing); err != nil {
		log.Printf("Failed to set flashcard set %s status to processing: %v", set.ID, err)
	}

	count := cardCountFromJob(job)

	genCtx := ai.WithTargetID(ai.WithUserID(ctx, job.UserID.String()), set.ID.String())
	cards, err := g.aiProvider.GenerateFlashcards(genCtx, set.Title, set.SourceText, count)
	if err != nil {
		if statusErr := g.flashcardRepo.SetStatus(ctx, set.ID, models.GenerationStatusPending); statusErr != nil {
			log.Printf("Failed to reset flashcard set %s status to pending after error: %v", set.ID, statusErr)
		}
		return fmt.Errorf("failed to generate flashcards: %w", err)
	}

	if err := g.flashcardRepo.SetCards(ctx, set.ID, cards); err != nil {
		return fmt.Errorf("failed to save flashcards: %w", err)
	}

	log.Printf("Generated flashcard set %s: %d cards", set.ID, len(cards))
	return nil
}

// ProcessJob processes a job based on its type
func (g *ContentGenerator) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeQuizGeneration:
		if err := g.ProcessQuizGenerationJob(ctx, job); err != nil {
			return g.handleJobError(ctx, msg, job, err, "quiz generation")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeFlashcardGeneration:
		if err := g.ProcessFlashcardGenerationJob(ctx, job); err != nil {
			return g.handleJobError(ctx, msg, job, err, "flashcard generation")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with retry logic
func (g *ContentGenerator) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	// Quota errors should not retry immediately
	if ai.IsQuotaError(err) {
		log.Printf("Quota exceeded for %s job %s: %v", jobType, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		log.Printf("Re-enqueueing %s job %s with NotBefore=%v (quota exhausted, retry in %v)",
			jobType, job.ID, notBefore, retryDelay)

		delayedJob := delayedRetry(job, notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if g.jobQueue != nil {
			if enqueueErr := g.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				g.markFailed(ctx, job)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Successfully re-enqueued %s job %s for retry at %v", jobType, job.ID, notBefore)
			return nil
		}

		log.Printf("Warning: No queue access, cannot re-enqueue job with delay. Sending to DLQ.")
		if nackErr := msg.Nack(false); nackErr != nil {
			log.Printf("Failed to nack quota error job: %v", nackErr)
		}
		g.markFailed(ctx, job)

		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limit errors retry with backoff
	if ai.IsRateLimitError(err) {
		log.Printf("Rate limited for %s job %s: %v", jobType, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && g.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := delayedRetry(job, notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := g.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				if nackErr := msg.Nack(true); nackErr != nil {
					log.Printf("Failed to nack rate limited job: %v", nackErr)
				}
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued %s job %s for retry at %v (delay: %v)",
				jobType, job.ID, notBefore, retryDelay)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			log.Printf("Rate limit: will retry job %s immediately (attempt %d/%d)",
				job.ID, job.RetryCount, job.MaxRetries)
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry logic for other errors
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	// Max retries exceeded, send to DLQ and mark the target failed
	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	g.markFailed(ctx, job)
	return fmt.Errorf("job failed (max retries): %w", err)
}

// markFailed records a permanent generation failure on the target record
func (g *ContentGenerator) markFailed(ctx context.Context, job *queue.Job) {
	var err error
	switch job.Type {
	case queue.JobTypeQuizGeneration:
		err = g.quizRepo.SetStatus(ctx, job.TargetID, models.GenerationStatusFailed)
	case queue.JobTypeFlashcardGeneration:
		err = g.flashcardRepo.SetStatus(ctx, job.TargetID, models.GenerationStatusFailed)
	}
	if err != nil {
		log.Printf("Failed to mark target %s of job %s as failed: %v", job.TargetID, job.ID, err)
	}
}

// delayedRetry copies a job for a delayed retry attempt
func delayedRetry(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		TargetID:   job.TargetID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}

func questionCountFromJob(job *queue.Job) int {
	return intFromMetadata(job, "question_count")
}

func cardCountFromJob(job *queue.Job) int {
	return intFromMetadata(job, "card_count")
}

// intFromMetadata reads an int out of job metadata. JSON round-trips numbers
// as float64, so both types are accepted.
func intFromMetadata(job *queue.Job, key string) int {
	if job.Metadata == nil {
		return 0
	}
	switch v := job.Metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
