package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/pkg/slogx"
)

type SeedService struct {
	Store store.Store
}

// EnsureSeeded brings the schema up to date and inserts the default course
// set when the courses table is empty. Existing courses are never touched,
// so calling it on every request is safe.
func (s *SeedService) EnsureSeeded(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.ApplyMigrations(); err != nil {
		l.Error("failed to apply migrations", slog.Any("error", err))
		return err
	}

	// Fast path: courses are never deleted at runtime, so a non-empty
	// catalogue needs no write transaction.
	count, err := s.Store.Courses().CountCourses(ctx)
	if err != nil {
		l.Error("failed to count courses", slog.Any("error", err))
		return err
	}
	if count > 0 {
		return nil
	}

	seeded := 0
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check under the write lock, another request may have seeded.
		count, err := tx.Courses().CountCourses(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, c := range domain.SeedCourses {
			if _, err := tx.Courses().CreateCourse(ctx, c); err != nil {
				l.Error("failed to create seed course",
					slog.String("title", c.Title),
					slog.Any("error", err),
				)
				return err
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		l.Error("failed to seed courses", slog.Any("error", err))
		return err
	}

	if seeded > 0 {
		l.Info("seeded course catalogue", slog.Int("count", seeded))
	}
	return nil
}
