package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna-labs/report-funnel/pkg/models/store"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
)

var ErrNotFound = errors.New("report not found")

type Store interface {
	Create(ctx context.Context, report *store.Report) error
	Get(ctx context.Context, accessToken string) (*store.Report, error)
	SetPaid(ctx context.Context, accessToken string, premium bool) error
	// MergeSections adds generated premium content to an existing report.
	// Existing sections are kept; the merge only adds, it never removes or
	// overwrites a populated section.
	MergeSections(ctx context.Context, accessToken string, sections map[string]string) error
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

func (s *defaultStore) Create(ctx context.Context, report *store.Report) error {
	query := `
		INSERT INTO reports (
			access_token, wood, fire, earth, metal, water,
			wealth, love, career, health, sections,
			is_paid, is_premium_paid, generated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var sections any
	if report.SectionsJSON != "" {
		sections = report.SectionsJSON
	}

	_, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query,
		report.AccessToken,
		report.Wood, report.Fire, report.Earth, report.Metal, report.Water,
		report.Wealth, report.Love, report.Career, report.Health,
		sections,
		report.IsPaid,
		report.IsPremiumPaid,
		report.GeneratedAt,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *defaultStore) Get(ctx context.Context, accessToken string) (*store.Report, error) {
	query := `
		SELECT access_token, wood, fire, earth, metal, water,
		       wealth, love, career, health, sections,
		       is_paid, is_premium_paid, generated_at, created_at, updated_at
		FROM reports
		WHERE access_token = ?`

	row := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, accessToken)

	var rep store.Report
	var sections sql.NullString
	err := row.Scan(
		&rep.AccessToken,
		&rep.Wood, &rep.Fire, &rep.Earth, &rep.Metal, &rep.Water,
		&rep.Wealth, &rep.Love, &rep.Career, &rep.Health,
		&sections,
		&rep.IsPaid,
		&rep.IsPremiumPaid,
		&rep.GeneratedAt,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if sections.Valid {
		rep.SectionsJSON = sections.String
	}
	return &rep, nil
}

func (s *defaultStore) SetPaid(ctx context.Context, accessToken string, premium bool) error {
	// Paid flags only move forward; there is no path back to unpaid.
	query := `
		UPDATE reports
		SET is_paid = TRUE, is_premium_paid = is_premium_paid OR ?, updated_at = ?
		WHERE access_token = ?`

	res, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query, premium, time.Now().UTC(), accessToken)
	if err != nil {
		return fmt.Errorf("update paid flags: %w", err)
	}
	return requireRow(res)
}

func (s *defaultStore) MergeSections(ctx context.Context, accessToken string, sections map[string]string) error {
	if len(sections) == 0 {
		return nil
	}

	existing, err := s.Get(ctx, accessToken)
	if err != nil {
		return err
	}

	merged := map[string]string{}
	if existing.SectionsJSON != "" {
		if err := json.Unmarshal([]byte(existing.SectionsJSON), &merged); err != nil {
			return fmt.Errorf("decode stored sections: %w", err)
		}
	}
	for name, text := range sections {
		if _, ok := merged[name]; !ok {
			merged[name] = text
		}
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode merged sections: %w", err)
	}

	query := `
		UPDATE reports
		SET sections = ?, generated_at = COALESCE(generated_at, ?), updated_at = ?
		WHERE access_token = ?`

	now := time.Now().UTC()
	res, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query, string(raw), now, now, accessToken)
	if err != nil {
		return fmt.Errorf("update report sections: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
