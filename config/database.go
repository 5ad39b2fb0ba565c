package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_id SERIAL PRIMARY KEY,
			account_name VARCHAR(100) UNIQUE NOT NULL,
			current_balance NUMERIC(14,2) NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id SERIAL PRIMARY KEY,
			date TIMESTAMP NOT NULL DEFAULT NOW(),
			amount NUMERIC(12,2) NOT NULL,
			merchant VARCHAR(200),
			category VARCHAR(100),
			notes TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			account_id INTEGER NOT NULL REFERENCES accounts(account_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	// Search extensions are optional: the fuzzy tier falls back to ILIKE
	// without pg_trgm, and the semantic tier degrades when the embedding
	// column is missing.
	optional := []string{
		`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS embedding vector(1536)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_merchant_trgm ON transactions USING gin (merchant gin_trgm_ops)`,
	}
	for _, stmt := range optional {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("⚠️ Optional migration skipped: %v", err)
		}
	}

	return nil
}
