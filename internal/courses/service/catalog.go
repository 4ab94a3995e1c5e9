package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
	"github.com/aussiebroadwan/courses/internal/courses/store"
)

var ErrCourseNotFound = errors.New("course not found")

type CatalogService struct {
	Store store.Store
}

// ListCourses returns every course in storage order.
func (s *CatalogService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.Store.Courses().ListCourses(ctx)
}

// GetCourse fetches a single course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	course, err := s.Store.Courses().GetCourseByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Course{}, ErrCourseNotFound
	}
	return course, err
}
