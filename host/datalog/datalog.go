// Package datalog stores pot telemetry captures in SQLite. A session
// groups the samples of one capture run with the device they came
// from and a free-form note, so swing statistics and velocity fits can
// be recomputed long after the bench is torn down.
package datalog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"goquarium/host/capture"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			device            TEXT,
			note              TEXT,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS samples (
			session_id        BIGINT,
			t_ms              BIGINT,
			pot               BIGINT,
			cmd               BIGINT,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS samples_by_session ON samples(session_id, t_ms);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Session describes one stored capture run.
type Session struct {
	ID        int64
	Device    string
	Note      string
	StartedAt string
	Samples   int
}

// BeginSession records a new capture run and returns its id.
func (db *DB) BeginSession(device, note string) (int64, error) {
	res, err := db.Exec("INSERT INTO sessions (device, note) VALUES (?, ?)", device, note)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// AddSamples appends a batch of samples to a session in one
// transaction.
func (db *DB) AddSamples(sessionID int64, samples []capture.Sample) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO samples (session_id, t_ms, pot, cmd) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(sessionID, int64(s.TimeMS), s.Pot, s.Cmd); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}

	return tx.Commit()
}

// Samples returns a session's samples in time order.
func (db *DB) Samples(sessionID int64) ([]capture.Sample, error) {
	rows, err := db.Query("SELECT t_ms, pot, cmd FROM samples WHERE session_id = ? ORDER BY t_ms", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []capture.Sample
	for rows.Next() {
		var t int64
		var pot, cmd int
		if err := rows.Scan(&t, &pot, &cmd); err != nil {
			return nil, err
		}
		samples = append(samples, capture.Sample{
			TimeMS: uint64(t),
			Pot:    pot,
			Cmd:    cmd,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// Sessions lists the stored capture runs, oldest first, with their
// sample counts.
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT s.session_id, s.device, s.note, s.started_at, COUNT(m.session_id)
		FROM sessions s
		LEFT JOIN samples m ON m.session_id = s.session_id
		GROUP BY s.session_id
		ORDER BY s.session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Device, &s.Note, &s.StartedAt, &s.Samples); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
