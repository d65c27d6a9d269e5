package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna-labs/report-funnel/pkg/models/store"
	"github.com/fortuna-labs/report-funnel/pkg/store/duckdb"
)

var ErrNotFound = errors.New("payment intent not found")

type Store interface {
	Create(ctx context.Context, intent *store.PaymentIntent) error
	GetByReference(ctx context.Context, merchantReference string) (*store.PaymentIntent, error)
	// FindPending returns the newest pending intent for the (token, tier)
	// pair, so retried checkouts reuse it instead of opening a second
	// chargeable intent.
	FindPending(ctx context.Context, accessToken string, tier string) (*store.PaymentIntent, error)
	HasVerified(ctx context.Context, accessToken string, tier string) (bool, error)
	MarkVerified(ctx context.Context, merchantReference string, receiptID string) error
	MarkFailed(ctx context.Context, merchantReference string) error
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

func (s *defaultStore) Create(ctx context.Context, intent *store.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (
			merchant_reference, access_token, amount, tier, status, receipt_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query,
		intent.MerchantReference,
		intent.AccessToken,
		intent.Amount,
		intent.Tier,
		intent.Status,
		intent.ReceiptID,
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment intent: %w", err)
	}
	return nil
}

func (s *defaultStore) GetByReference(ctx context.Context, merchantReference string) (*store.PaymentIntent, error) {
	query := `
		SELECT merchant_reference, access_token, amount, tier, status, receipt_id, created_at, updated_at
		FROM payment_intents
		WHERE merchant_reference = ?`

	row := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, merchantReference)
	return scanIntent(row)
}

func (s *defaultStore) FindPending(ctx context.Context, accessToken string, tier string) (*store.PaymentIntent, error) {
	query := `
		SELECT merchant_reference, access_token, amount, tier, status, receipt_id, created_at, updated_at
		FROM payment_intents
		WHERE access_token = ? AND tier = ? AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`

	row := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, accessToken, tier)
	return scanIntent(row)
}

func (s *defaultStore) HasVerified(ctx context.Context, accessToken string, tier string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM payment_intents
		WHERE access_token = ? AND tier = ? AND status = 'verified'`

	var count int
	err := duckdb.Exec(ctx, s.db).QueryRowContext(ctx, query, accessToken, tier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count verified intents: %w", err)
	}
	return count > 0, nil
}

func (s *defaultStore) MarkVerified(ctx context.Context, merchantReference string, receiptID string) error {
	return s.setStatus(ctx, merchantReference, "verified", &receiptID)
}

func (s *defaultStore) MarkFailed(ctx context.Context, merchantReference string) error {
	return s.setStatus(ctx, merchantReference, "failed", nil)
}

func (s *defaultStore) setStatus(ctx context.Context, merchantReference, status string, receiptID *string) error {
	// Verified intents are immutable.
	query := `
		UPDATE payment_intents
		SET status = ?, receipt_id = COALESCE(?, receipt_id), updated_at = ?
		WHERE merchant_reference = ? AND status = 'pending'`

	res, err := duckdb.Exec(ctx, s.db).ExecContext(ctx, query, status, receiptID, time.Now().UTC(), merchantReference)
	if err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment intent: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIntent(row *sql.Row) (*store.PaymentIntent, error) {
	var intent store.PaymentIntent
	err := row.Scan(
		&intent.MerchantReference,
		&intent.AccessToken,
		&intent.Amount,
		&intent.Tier,
		&intent.Status,
		&intent.ReceiptID,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment intent: %w", err)
	}
	return &intent, nil
}
