package report

import (
	"context"
	"database/sql"
	"encoding/json"
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

func reportFixture(token string) *store.Report {
	now := time.Now().UTC()
	return &store.Report{
		AccessToken: token,
		Wood:        20, Fire: 20, Earth: 20, Metal: 20, Water: 20,
		Wealth: 72, Love: 64, Career: 58, Health: 81,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sections(t *testing.T, raw string) map[string]string {
	t.Helper()
	parsed := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(raw), &parsed))
	return parsed
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

	require.NoError(t, f.store.Create(ctx, reportFixture("tok-1")))

	got, err := f.store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Wood)
	assert.Equal(t, 81, got.Health)
	assert.Empty(t, got.SectionsJSON)
	assert.False(t, got.IsPaid)
	assert.Nil(t, got.GeneratedAt)

	_, err = f.store.Get(ctx, "tok-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetPaid(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, reportFixture("tok-1")))
	require.NoError(t, f.store.SetPaid(ctx, "tok-1", false))

	got, err := f.store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.False(t, got.IsPremiumPaid)

	t.Run("premium raises, never lowers", func(t *testing.T) {
		require.NoError(t, f.store.SetPaid(ctx, "tok-1", true))

		got, err := f.store.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, got.IsPremiumPaid)

		// A later basic-only settlement must not clear the premium flag.
		require.NoError(t, f.store.SetPaid(ctx, "tok-1", false))

		got, err = f.store.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, got.IsPremiumPaid)
	})

	t.Run("unknown token", func(t *testing.T) {
		assert.ErrorIs(t, f.store.SetPaid(ctx, "tok-missing", false), ErrNotFound)
	})
}

func TestStore_MergeSections(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Create(ctx, reportFixture("tok-1")))

	require.NoError(t, f.store.MergeSections(ctx, "tok-1", map[string]string{
		"destiny": "original",
	}))

	got, err := f.store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"destiny": "original"}, sections(t, got.SectionsJSON))
	require.NotNil(t, got.GeneratedAt)
	firstGeneratedAt := *got.GeneratedAt

	t.Run("merge only adds", func(t *testing.T) {
		require.NoError(t, f.store.MergeSections(ctx, "tok-1", map[string]string{
			"destiny": "overwrite attempt",
			"love":    "new section",
		}))

		got, err := f.store.Get(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"destiny": "original",
			"love":    "new section",
		}, sections(t, got.SectionsJSON))

		// The completion timestamp is set once.
		require.NotNil(t, got.GeneratedAt)
		assert.Equal(t, firstGeneratedAt.Unix(), got.GeneratedAt.Unix())
	})

	t.Run("empty merge is a no-op", func(t *testing.T) {
		require.NoError(t, f.store.MergeSections(ctx, "tok-1", nil))
	})

	t.Run("unknown token", func(t *testing.T) {
		err := f.store.MergeSections(ctx, "tok-missing", map[string]string{"destiny": "text"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
