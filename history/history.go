// Package history keeps a journal of connection transitions in a local
// SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yllada/wireguard-gui/common"
	"github.com/yllada/wireguard-gui/vpn"
)

// Entry is one recorded transition.
type Entry struct {
	ID       string             `json:"id"`
	Time     time.Time          `json:"time"`
	Kind     vpn.TransitionKind `json:"kind"`
	Profile  string             `json:"profile,omitempty"`
	From     string             `json:"from,omitempty"`
	PublicIP string             `json:"public_ip,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// OK reports whether the transition succeeded.
func (e Entry) OK() bool {
	return e.Error == ""
}

// Journal implements vpn.Recorder on top of SQLite.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

var _ vpn.Recorder = (*Journal)(nil)

const schema = `CREATE TABLE IF NOT EXISTS transitions (
	id         TEXT PRIMARY KEY,
	at         INTEGER NOT NULL,
	kind       TEXT NOT NULL,
	profile    TEXT NOT NULL DEFAULT '',
	from_name  TEXT NOT NULL DEFAULT '',
	public_ip  TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT ''
)`

const atIndex = `CREATE INDEX IF NOT EXISTS idx_transitions_at ON transitions(at)`

// Open creates or opens the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		schema,
		atIndex,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: init %q: %w", s, err)
		}
	}

	common.LogDebug("History journal opened at %s", path)
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordTransition stores t with the current time.
func (j *Journal) RecordTransition(ctx context.Context, t vpn.Transition) error {
	var errText string
	if t.Err != nil {
		errText = t.Err.Error()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO transitions (id, at, kind, profile, from_name, public_ip, error) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), j.now().UnixNano(), string(t.Kind), t.Profile, t.From, t.PublicIP, errText,
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", t.Kind, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or
// less returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, kind, profile, from_name, public_ip, error FROM transitions ORDER BY at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			at   int64
			kind string
		)
		if err := rows.Scan(&e.ID, &at, &kind, &e.Profile, &e.From, &e.PublicIP, &e.Error); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Time = time.Unix(0, at)
		e.Kind = vpn.TransitionKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than before and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM transitions WHERE at < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}
