package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna-labs/report-funnel/pkg/models/store"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: store,
	}
}

func sessionFixture(token string, createdAt time.Time) *store.Session {
	return &store.Session{
		AccessToken: token,
		ProfileID:   "profile-" + token,
		Name:        "Jin",
		Phone:       "01012345678",
		BirthDate:   time.Date(1990, 4, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		CreatedAt:   createdAt,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_CreateAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	sess := sessionFixture("tok-1", time.Now().UTC())
	require.NoError(t, f.store.Create(ctx, sess))

	t.Run("get by token", func(t *testing.T) {
		got, err := f.store.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, sess.ProfileID, got.ProfileID)
		assert.Equal(t, sess.Phone, got.Phone)
		assert.Equal(t, sess.BirthDate.Unix(), got.BirthDate.Unix())
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.store.Get(ctx, "tok-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_FindByIdentity(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	earlier := time.Now().UTC().Add(-time.Hour)
	later := time.Now().UTC()
	require.NoError(t, f.store.Create(ctx, sessionFixture("tok-old", earlier)))
	require.NoError(t, f.store.Create(ctx, sessionFixture("tok-new", later)))

	t.Run("returns newest match", func(t *testing.T) {
		birthDate := time.Date(1990, 4, 15, 0, 0, 0, 0, time.UTC)
		got, err := f.store.FindByIdentity(ctx, "01012345678", birthDate)
		require.NoError(t, err)
		assert.Equal(t, "tok-new", got.AccessToken)
	})

	t.Run("no match", func(t *testing.T) {
		birthDate := time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := f.store.FindByIdentity(ctx, "01012345678", birthDate)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, sessionFixture("tok-1", time.Now().UTC())))
	require.NoError(t, f.store.Create(ctx, sessionFixture("tok-2", time.Now().UTC())))

	sessions, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
