package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
)

type courseRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r courseRow) toDomain() domain.Course {
	return domain.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: mapNullString(r.Description),
		CreatedAt:   r.CreatedAt,
	}
}

const (
	listCourses = `SELECT id, title, description, created_at FROM courses ORDER BY id`

	getCourseByID = `SELECT id, title, description, created_at FROM courses WHERE id = ?`

	createCourse = `INSERT INTO courses (title, description) VALUES (?, ?)`

	countCourses = `SELECT COUNT(*) FROM courses`
)

type coursesRepo struct {
	q sqlx.ExtContext
}

func (r *coursesRepo) ListCourses(ctx context.Context) ([]domain.Course, error) {
	var rows []courseRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, listCourses); err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toDomain())
	}
	return courses, nil
}

func (r *coursesRepo) GetCourseByID(ctx context.Context, id int64) (domain.Course, error) {
	var row courseRow
	if err := sqlx.GetContext(ctx, r.q, &row, getCourseByID, id); err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *coursesRepo) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	res, err := r.q.ExecContext(ctx, createCourse, c.Title, mapStringNull(c.Description))
	if err != nil {
		return domain.Course{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Course{}, err
	}
	return r.GetCourseByID(ctx, id)
}

func (r *coursesRepo) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, r.q, &count, countCourses); err != nil {
		return 0, err
	}
	return count, nil
}
