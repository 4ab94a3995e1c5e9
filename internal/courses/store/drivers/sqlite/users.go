package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
)

type userRow struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}

const (
	getUserByID = `SELECT id, username, password, created_at FROM users WHERE id = ?`

	getUserByUsername = `SELECT id, username, password, created_at FROM users WHERE username = ?`

	createUser = `INSERT INTO users (username, password) VALUES (?, ?)`
)

type usersRepo struct {
	q sqlx.ExtContext
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, getUserByID, id); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, getUserByUsername, username); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.q.ExecContext(ctx, createUser, u.Username, u.PasswordHash)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUserByID(ctx, id)
}
