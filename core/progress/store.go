package progress

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ecoquest/ecoquest/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrInvalidID     = errors.New("id is required")
	ErrInvalidPoints = errors.New("points must not be negative")
)

// Store owns the progress slot. Every operation loads the record (recalculating
// the streak), mutates it, persists it and returns it. Persistence failures are
// logged and the in-memory record is returned anyway.
type Store struct {
	mutex      sync.Mutex
	kv         core.KVStore
	logger     core.Logger
	validate   *validator.Validate
	totalPaths int
}

func NewStore(kv core.KVStore, logger core.Logger, validate *validator.Validate, totalPaths int) *Store {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Store{kv: kv, logger: logger, validate: validate, totalPaths: totalPaths}
}

func days(now time.Time) (today, yesterday string) {
	return core.DateOf(now), core.DateOf(now.Add(-24 * time.Hour))
}

// load must be called with the mutex held.
func (s *Store) load(ctx context.Context) Record {
	today, yesterday := days(NowFunc())

	var rec Record
	raw, err := s.kv.Get(ctx, core.SlotProgress)
	switch {
	case err == core.ErrSlotNotFound:
		rec = Seed(today)
	case err != nil:
		s.logger.Error("reading progress", err)
		rec = Seed(today)
	default:
		if err = json.Unmarshal(raw, &rec); err != nil {
			s.logger.Error("decoding progress", errors.Wrap(err, "corrupted progress slot, reseeding"))
			rec = Seed(today)
		}
	}

	rec.backfill()
	rec.recalcStreak(today, yesterday)
	s.save(ctx, rec)
	return rec
}

func (s *Store) save(ctx context.Context, rec Record) {
	raw, err := json.Marshal(rec)
	if err == nil {
		err = s.kv.Set(ctx, core.SlotProgress, raw)
	}
	if err != nil {
		s.logger.Error("persisting progress", err)
	}
}

// update runs fn over the loaded record. The record is persisted when fn reports a change.
func (s *Store) update(ctx context.Context, fn func(rec *Record) bool) Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec := s.load(ctx)
	if fn(&rec) {
		s.save(ctx, rec)
	}
	return rec
}

func (s *Store) Load(ctx context.Context) Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.load(ctx)
}

func (s *Store) Stats(ctx context.Context) Stats {
	rec := s.Load(ctx)
	return rec.stats(s.totalPaths)
}

// RecordQuizResult replaces the stored result of the same quiz. Points add up across attempts.
func (s *Store) RecordQuizResult(ctx context.Context, result QuizResult) (Record, error) {
	result.Title = core.CleanString(result.Title)
	if result.CompletedAt == "" {
		result.CompletedAt = core.DateOf(NowFunc())
	}
	if err := s.validate.Struct(result); err != nil {
		return Record{}, err
	}

	return s.update(ctx, func(rec *Record) bool {
		quizzes := rec.CompletedQuizzes[:0]
		for _, q := range rec.CompletedQuizzes {
			if q.ID != result.ID {
				quizzes = append(quizzes, q)
			}
		}
		rec.CompletedQuizzes = append(quizzes, result)
		rec.addPoints(result.PointsEarned)
		return true
	}), nil
}

// CompleteChallenge is a no-op for an already completed challenge.
func (s *Store) CompleteChallenge(ctx context.Context, challengeID string, points int) (Record, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return Record{}, ErrInvalidID
	}
	if points < 0 {
		return Record{}, ErrInvalidPoints
	}

	return s.update(ctx, func(rec *Record) bool {
		if core.ContainsString(rec.CompletedChallenges, challengeID) {
			return false
		}
		rec.CompletedChallenges = append(rec.CompletedChallenges, challengeID)
		rec.Streak++
		rec.addPoints(points)
		return true
	}), nil
}

func (s *Store) UnlockBadge(ctx context.Context, badgeID string) (Record, error) {
	badgeID = strings.TrimSpace(badgeID)
	if badgeID == "" {
		return Record{}, ErrInvalidID
	}

	return s.update(ctx, func(rec *Record) bool {
		if core.ContainsString(rec.UnlockedBadges, badgeID) {
			return false
		}
		rec.UnlockedBadges = append(rec.UnlockedBadges, badgeID)
		return true
	}), nil
}

// EnrollInLesson starts a lesson at 0% unless progress was already recorded.
func (s *Store) EnrollInLesson(ctx context.Context, lessonID string) (Record, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return Record{}, ErrInvalidID
	}

	return s.update(ctx, func(rec *Record) bool {
		if core.ContainsString(rec.EnrolledLessons, lessonID) {
			return false
		}
		rec.EnrolledLessons = append(rec.EnrolledLessons, lessonID)
		if _, ok := rec.LessonProgress[lessonID]; !ok {
			rec.LessonProgress[lessonID] = 0
		}
		return true
	}), nil
}

// UpdateLessonProgress stores percent rounded and clamped to [0,100].
// Reaching 100 awards the lesson bonus, on every call.
func (s *Store) UpdateLessonProgress(ctx context.Context, lessonID string, percent float64) (Record, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return Record{}, ErrInvalidID
	}

	return s.update(ctx, func(rec *Record) bool {
		p := roundPercent(percent)
		rec.LessonProgress[lessonID] = p
		if p == CompletePercent {
			rec.lessonCompletionBonus()
		}
		return true
	}), nil
}

// UpdateLearningPathProgress adds increment to the path progress, clamped to [0,100].
// The first time a path reaches 100 it is completed: bonus points and a certificate.
func (s *Store) UpdateLearningPathProgress(ctx context.Context, pathID string, increment int) (Record, error) {
	pathID = strings.TrimSpace(pathID)
	if pathID == "" {
		return Record{}, ErrInvalidID
	}

	return s.update(ctx, func(rec *Record) bool {
		p := clampPercent(rec.LearningPathProgress[pathID] + clampIncrement(increment))
		rec.LearningPathProgress[pathID] = p
		if p >= CompletePercent && !core.ContainsString(rec.CompletedPaths, pathID) {
			rec.CompletedPaths = append(rec.CompletedPaths, pathID)
			rec.Certificates++
			rec.addPoints(PathBonus)
		}
		return true
	}), nil
}
