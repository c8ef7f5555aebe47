package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"go.uber.org/zap"
)

// RecordStore is the persistence contract the service needs. The store only
// loads and saves whole records; all aggregation happens in memory here.
type RecordStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.AnalyticsRecord, error)
	Upsert(ctx context.Context, rec *models.AnalyticsRecord) error
}

// Service coordinates the event log, aggregator and streak tracker behind the
// recording operations. Each user's record is mutated by one
// load-append-recompute-save cycle at a time: mutations take a per-user lock,
// so concurrent requests for the same user are serialized rather than lost.
type Service struct {
	store  RecordStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex

	// now is injected so streak transitions stay deterministic in tests
	now func() time.Time
}

// NewService creates an analytics service backed by the given store.
func NewService(store RecordStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		locks:  make(map[uuid.UUID]*sync.Mutex),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// RecordQuizAttempt records a completed quiz: appends the attempt (plus its
// generic study session), recomputes totals, advances the streak and saves.
// On any error nothing is persisted.
func (s *Service) RecordQuizAttempt(ctx context.Context, userID uuid.UUID, attempt models.QuizAttempt) (*models.AnalyticsRecord, error) {
	return s.record(ctx, userID, func(rec *models.AnalyticsRecord, now time.Time) (time.Time, error) {
		return AppendQuizAttempt(rec, attempt, now)
	})
}

// RecordFlashcardSession records a flashcard review session.
func (s *Service) RecordFlashcardSession(ctx context.Context, userID uuid.UUID, session models.FlashcardSession) (*models.AnalyticsRecord, error) {
	return s.record(ctx, userID, func(rec *models.AnalyticsRecord, now time.Time) (time.Time, error) {
		return AppendFlashcardSession(rec, session, now)
	})
}

// RecordStudySession records a generic study session.
func (s *Service) RecordStudySession(ctx context.Context, userID uuid.UUID, session models.StudySession) (*models.AnalyticsRecord, error) {
	return s.record(ctx, userID, func(rec *models.AnalyticsRecord, now time.Time) (time.Time, error) {
		return AppendStudySession(rec, session, now)
	})
}

// record runs one append-recompute-advance-save cycle under the user's lock.
// The streak advances off the appended event's date, not the server clock, so
// an explicitly backdated event breaks the streak instead of extending it.
func (s *Service) record(ctx context.Context, userID uuid.UUID, appendEvent func(*models.AnalyticsRecord, time.Time) (time.Time, error)) (*models.AnalyticsRecord, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()

	rec, err := s.loadOrCreate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	eventDate, err := appendEvent(rec, now)
	if err != nil {
		return nil, err
	}

	Recompute(rec)

	streak, err := AdvanceStreak(rec.Streak, eventDate)
	if err != nil {
		// Invariant violation: reject the update rather than persist it.
		s.logger.Error("streak_invariant_violation",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	rec.Streak = streak
	rec.UpdatedAt = now

	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Dashboard assembles the composite read model for a user, merging the
// externally supplied catalog counts. It never mutates stored state; a user
// with no history gets a zero-filled dashboard.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID, counts CatalogCounts) (*Dashboard, error) {
	now := s.now()

	rec, err := s.loadOrCreate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return AssembleDashboard(rec, counts, now), nil
}

func (s *Service) loadOrCreate(ctx context.Context, userID uuid.UUID, now time.Time) (*models.AnalyticsRecord, error) {
	rec, err := s.store.GetByUserID(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return NewRecord(userID, now), nil
}
