package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/courses/internal/courses/domain"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/internal/courses/store/drivers/sqlite"
	"github.com/aussiebroadwan/courses/pkg/cryptox"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "courses.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())

	return &AuthService{
		Store:  st,
		Hasher: &cryptox.BcryptHasher{Cost: 4},
	}
}

func TestSeedService_EnsureSeeded(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SeedService{Store: st}

	// Migrations run as part of seeding, no prior ApplyMigrations needed.
	require.NoError(t, svc.EnsureSeeded(ctx))

	courses, err := (&CatalogService{Store: st}).ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, len(domain.SeedCourses))
	for i, c := range courses {
		require.Equal(t, domain.SeedCourses[i].Title, c.Title)
		require.Equal(t, domain.SeedCourses[i].Description, c.Description)
	}

	// Repeat calls never duplicate.
	require.NoError(t, svc.EnsureSeeded(ctx))
	count, err := st.Courses().CountCourses(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestSeedService_NonEmptyCatalogueUntouched(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())

	_, err := st.Courses().CreateCourse(ctx, domain.Course{Title: "Chemistry"})
	require.NoError(t, err)

	require.NoError(t, (&SeedService{Store: st}).EnsureSeeded(ctx))

	courses, err := st.Courses().ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, "Chemistry", courses[0].Title)
}

func TestSeedService_Concurrent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SeedService{Store: st}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.EnsureSeeded(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := st.Courses().CountCourses(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestCatalogService_GetCourse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, (&SeedService{Store: st}).EnsureSeeded(ctx))
	svc := &CatalogService{Store: st}

	course, err := svc.GetCourse(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "Physics", course.Title)

	_, err = svc.GetCourse(ctx, 999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	user, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, "pw1", user.PasswordHash, "password must be stored hashed")

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other")
		require.ErrorIs(t, err, ErrUsernameTaken)

		// First password still works.
		_, err = svc.Authenticate(ctx, "alice", "pw1")
		require.NoError(t, err)
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		_, err := svc.Register(ctx, "Alice", "pw2")
		require.NoError(t, err)
	})

	t.Run("empty credentials accepted", func(t *testing.T) {
		u, err := svc.Register(ctx, "", "")
		require.NoError(t, err)

		got, err := svc.Authenticate(ctx, "", "")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	registered, err := svc.Register(ctx, "bob", "secret")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "bob", "secret")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "bob", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "Bob", "secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UnreadableHash(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	_, err := svc.Store.Users().CreateUser(ctx, domain.User{
		Username:     "legacy",
		PasswordHash: "pbkdf2:sha256:260000$salt$hash",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "legacy", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUserByID(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t)

	registered, err := svc.Register(ctx, "carol", "pw")
	require.NoError(t, err)

	got, err := svc.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, "carol", got.Username)
}

// txCountingStore counts write transactions opened through WithTx.
type txCountingStore struct {
	store.Store

	txs atomic.Int32
}

func (s *txCountingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.txs.Add(1)
	return s.Store.WithTx(ctx, fn)
}

func TestSeedService_SeededCatalogueSkipsWriteTx(t *testing.T) {
	ctx := context.Background()
	st := &txCountingStore{Store: newTestStore(t)}
	svc := &SeedService{Store: st}

	require.NoError(t, svc.EnsureSeeded(ctx))
	require.EqualValues(t, 1, st.txs.Load())

	for range 5 {
		require.NoError(t, svc.EnsureSeeded(ctx))
	}
	require.EqualValues(t, 1, st.txs.Load(), "a seeded catalogue must not open write transactions")
}

// missingLookupStore hides existing usernames from the pre-insert check,
// the same view a registration gets when it loses a race.
type missingLookupStore struct {
	store.Store
}

func (s missingLookupStore) Users() store.Users { return missingLookupUsers{s.Store.Users()} }

type missingLookupUsers struct {
	store.Users
}

func (missingLookupUsers) GetUserByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func newRegistrationStore(t *testing.T) (*sqlite.Store, *sqlx.DB) {
	t.Helper()

	file := filepath.Join(t.TempDir(), "courses.db")
	st, err := sqlite.NewStore(sqlite.DSN(file))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	raw, err := sqlx.Open(sqlite.DriverName, sqlite.DSN(file))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	return st, raw
}

func countUsers(t *testing.T, db *sqlx.DB, username string) int {
	t.Helper()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM users WHERE username = ?`, username))
	return n
}

func TestAuthService_Register_InsertCollisionIsUsernameTaken(t *testing.T) {
	ctx := context.Background()
	st, raw := newRegistrationStore(t)
	hasher := &cryptox.BcryptHasher{Cost: 4}

	first := &AuthService{Store: st, Hasher: hasher}
	_, err := first.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	late := &AuthService{Store: missingLookupStore{Store: st}, Hasher: hasher}
	_, err = late.Register(ctx, "alice", "pw2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	require.Equal(t, 1, countUsers(t, raw, "alice"))
	_, err = first.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, err = first.Authenticate(ctx, "alice", "pw2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Concurrent(t *testing.T) {
	ctx := context.Background()
	st, raw := newRegistrationStore(t)
	svc := &AuthService{Store: st, Hasher: &cryptox.BcryptHasher{Cost: 4}}

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "bob", fmt.Sprintf("pw-%d", i))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, taken int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUsernameTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, 1, ok)
	require.Equal(t, n-1, taken)
	require.Equal(t, 1, countUsers(t, raw, "bob"))
}
