package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO sessions (access_token, profile_id, name, phone, birth_date, gender)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"tok-001", "profile-001", "Jin", "01012345678", "1990-04-15 00:00:00", "female",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sessions WHERE access_token = ?", "tok-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The other tables exist too.
	err = db.QueryRow("SELECT COUNT(*) FROM payment_intents").Scan(&count)
	require.NoError(t, err)
	err = db.QueryRow("SELECT COUNT(*) FROM reports").Scan(&count)
	require.NoError(t, err)
}
