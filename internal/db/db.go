package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool behind every store and verifies it with a
// ping, so a bad DSN fails at startup rather than on the first reminder.
func Connect(connString string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(10)
	pool.SetConnMaxIdleTime(5 * time.Minute)

	if err := pool.Ping(); err != nil {
		return nil, err
	}

	return pool, nil
}
