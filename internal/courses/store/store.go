package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories so a Tx can hand out the same repos bound to
// the transaction.
type Store interface {
	Users() Users
	Courses() Courses

	// ApplyMigrations brings the schema up to date. It is idempotent and
	// cheap once the schema is current.
	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login and the registration
	// uniqueness check.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns it with the generated id.
	// A username collision at the store level returns ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

type Courses interface {
	// ListCourses returns every course ordered by id.
	ListCourses(ctx context.Context) ([]domain.Course, error)

	// GetCourseByID returns a course by id.
	GetCourseByID(ctx context.Context, id int64) (domain.Course, error)

	// CreateCourse inserts a course and returns it with the generated id.
	CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error)

	// CountCourses returns the number of stored courses.
	CountCourses(ctx context.Context) (int64, error)
}
