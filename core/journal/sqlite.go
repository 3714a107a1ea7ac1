package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS rounds (
        id TEXT PRIMARY KEY,
        hour_index INTEGER NOT NULL,
        session TEXT,
        penalties INTEGER NOT NULL,
        total_cost REAL NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS rounds_hour ON rounds(hour_index);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, hour_index, session, penalties, total_cost, record) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.At().Index(), rec.Session, len(rec.Response.Penalties), rec.Response.TotalCost, string(b))
	return err
}

// Query returns records matching q ordered by hour. The hour range is
// evaluated in SQL, the remaining filters on the decoded records.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	query := `SELECT record FROM rounds WHERE hour_index >= ?`
	args := []any{q.From.Index()}
	if q.To.Index() > 0 {
		query += ` AND hour_index <= ?`
		args = append(args, q.To.Index())
	}
	query += ` ORDER BY hour_index, rowid`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if !q.Match(r) {
			continue
		}
		res = append(res, r)
		if q.Limit > 0 && len(res) >= q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Flush is a no-op: every insert is committed.
func (s *SQLiteStore) Flush() error { return nil }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
