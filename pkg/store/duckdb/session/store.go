package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna-labs/report-funnel/pkg/models/store"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
)

// ErrNotFound is returned when no session matches the lookup.
var ErrNotFound = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, accessToken string) (*store.Session, error)
	FindByIdentity(ctx context.Context, phone string, birthDate time.Time) (*store.Session, error)
	List(ctx context.Context) ([]*store.Session, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Create(ctx context.Context, session *store.Session) error {
	query := `
		INSERT INTO sessions (access_token, profile_id, name, phone, birth_date, gender, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query,
		session.AccessToken,
		session.ProfileID,
		session.Name,
		session.Phone,
		session.BirthDate,
		session.Gender,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, accessToken string) (*store.Session, error) {
	query := `
		SELECT access_token, profile_id, name, phone, birth_date, gender, created_at
		FROM sessions
		WHERE access_token = ?`

	row := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, accessToken)
	return scanSession(row)
}

func (s *defaultStore) FindByIdentity(ctx context.Context, phone string, birthDate time.Time) (*store.Session, error) {
	query := `
		SELECT access_token, profile_id, name, phone, birth_date, gender, created_at
		FROM sessions
		WHERE phone = ? AND birth_date = ?
		ORDER BY created_at DESC
		LIMIT 1`

	row := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, phone, birthDate)
	return scanSession(row)
}

func (s *defaultStore) List(ctx context.Context) ([]*store.Session, error) {
	query := `
		SELECT access_token, profile_id, name, phone, birth_date, gender, created_at
		FROM sessions
		ORDER BY created_at DESC`

	rows, err := duckdb.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*store.Session
	for rows.Next() {
		var sess store.Session
		err = rows.Scan(
			&sess.AccessToken,
			&sess.ProfileID,
			&sess.Name,
			&sess.Phone,
			&sess.BirthDate,
			&sess.Gender,
			&sess.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func scanSession(row *sql.Row) (*store.Session, error) {
	var sess store.Session
	err := row.Scan(
		&sess.AccessToken,
		&sess.ProfileID,
		&sess.Name,
		&sess.Phone,
		&sess.BirthDate,
		&sess.Gender,
		&sess.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}
