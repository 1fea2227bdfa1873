// Package postgres provides optional persistence for engine events and
// per-user chamber progress summaries. The engine is fully playable with a
// nil client; every caller must tolerate this package being absent.
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// EventRow is an engine event stored in Postgres.
type EventRow struct {
	EventID   int64                  `json:"event_id"`
	Timestamp time.Time              `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	ChamberID *string                `json:"chamber_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// ProgressRow is the summary persisted per (user, chamber).
type ProgressRow struct {
	UserID         string    `json:"user_id"`
	ChamberID      string    `json:"chamber_id"`
	CorrectAnswers int       `json:"correct_answers"`
	ProgressScore  int       `json:"progress_score"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Client manages the Postgres connection.
type Client struct {
	db *sql.DB
}

// New creates a new Postgres client using environment variables.
func New() (*Client, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "soulbios")
	dbname := getEnv("PGDATABASE", "soulbios")
	password := os.Getenv("PGPASSWORD")

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable",
			host, port, user, dbname)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	client := &Client{db: db}

	if err := client.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (c *Client) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS chamber_events (
			event_id   BIGSERIAL PRIMARY KEY,
			ts         TIMESTAMPTZ NOT NULL,
			level      TEXT NOT NULL,
			event      TEXT NOT NULL,
			chamber_id TEXT,
			fields     JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_chamber_events_ts ON chamber_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_chamber_events_chamber ON chamber_events(chamber_id);

		CREATE TABLE IF NOT EXISTS chamber_progress (
			user_id         TEXT NOT NULL,
			chamber_id      TEXT NOT NULL,
			correct_answers INT NOT NULL DEFAULT 0,
			progress_score  INT NOT NULL DEFAULT 0,
			updated_at      TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, chamber_id)
		);
	`
	_, err := c.db.Exec(query)
	return err
}

// AppendEvent inserts an engine event.
func (c *Client) AppendEvent(ts time.Time, level, event, chamberID string, fields map[string]interface{}) error {
	var fieldsJSON []byte
	var err error
	if fields != nil {
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %w", err)
		}
	}

	var chamberPtr *string
	if chamberID != "" {
		chamberPtr = &chamberID
	}

	query := `
		INSERT INTO chamber_events (ts, level, event, chamber_id, fields)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = c.db.Exec(query, ts, level, event, chamberPtr, fieldsJSON)
	return err
}

// UpsertProgress stores the summary counters for a (user, chamber) pair.
// Counters only move forward: an upsert never lowers a stored value.
func (c *Client) UpsertProgress(userID, chamberID string, correctAnswers, progressScore int) error {
	query := `
		INSERT INTO chamber_progress (user_id, chamber_id, correct_answers, progress_score, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, chamber_id) DO UPDATE SET
			correct_answers = GREATEST(chamber_progress.correct_answers, EXCLUDED.correct_answers),
			progress_score  = GREATEST(chamber_progress.progress_score, EXCLUDED.progress_score),
			updated_at      = EXCLUDED.updated_at
	`
	_, err := c.db.Exec(query, userID, chamberID, correctAnswers, progressScore, time.Now().UTC())
	return err
}

// Progress returns the stored summary for a (user, chamber) pair, or nil if
// none exists.
func (c *Client) Progress(userID, chamberID string) (*ProgressRow, error) {
	query := `
		SELECT user_id, chamber_id, correct_answers, progress_score, updated_at
		FROM chamber_progress
		WHERE user_id = $1 AND chamber_id = $2
	`
	var row ProgressRow
	err := c.db.QueryRow(query, userID, chamberID).Scan(
		&row.UserID, &row.ChamberID, &row.CorrectAnswers, &row.ProgressScore, &row.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// QueryEvents returns the last N events in descending timestamp order.
func (c *Client) QueryEvents(limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 10000 {
		limit = 10000
	}

	query := `
		SELECT event_id, ts, level, event, chamber_id, fields
		FROM chamber_events
		ORDER BY ts DESC
		LIMIT $1
	`
	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var e EventRow
		var fieldsJSON []byte
		var chamberID sql.NullString

		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.Level, &e.Event, &chamberID, &fieldsJSON); err != nil {
			return nil, err
		}

		if chamberID.Valid {
			e.ChamberID = &chamberID.String
		}
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
