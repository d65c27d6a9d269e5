package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const SessionsSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		access_token VARCHAR NOT NULL,
		profile_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		phone VARCHAR NOT NULL,
		birth_date TIMESTAMP NOT NULL,
		gender VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (access_token)
	);
`

const PaymentIntentsSchema = `
	CREATE TABLE IF NOT EXISTS payment_intents (
		merchant_reference VARCHAR NOT NULL,
		access_token VARCHAR NOT NULL,
		amount BIGINT NOT NULL,
		tier VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		receipt_id VARCHAR NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (merchant_reference)
	);
`

const ReportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		access_token VARCHAR NOT NULL,
		wood INTEGER NOT NULL,
		fire INTEGER NOT NULL,
		earth INTEGER NOT NULL,
		metal INTEGER NOT NULL,
		water INTEGER NOT NULL,
		wealth INTEGER NOT NULL,
		love INTEGER NOT NULL,
		career INTEGER NOT NULL,
		health INTEGER NOT NULL,
		sections JSON,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		is_premium_paid BOOLEAN NOT NULL DEFAULT FALSE,
		generated_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (access_token)
	);
`

var bootQueries = []string{
	SessionsSchema,
	PaymentIntentsSchema,
	ReportsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
