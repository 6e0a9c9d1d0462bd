package char64

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryDB records finished conversions in a sqlite database so a
// source image converted with the same content can be recognized and
// past runs inspected.
type HistoryDB struct {
	db *sql.DB
}

// A HistoryEntry is one recorded conversion.
type HistoryEntry struct {
	ID       int64
	SHA1     string
	Source   string
	Options  string
	Patterns int
	Created  time.Time
}

func NewHistoryDB(file string) (*HistoryDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, source TEXT NOT NULL, options TEXT NOT NULL, patterns INTEGER NOT NULL, charmap BLOB NOT NULL, created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP)"); err != nil {
		return nil, err
	}

	return &HistoryDB{
		db: db,
	}, nil
}

func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Record stores a conversion keyed by the SHA-1 of the source content.
// Converting identical content again updates the existing row and
// returns its id.
func (h *HistoryDB) Record(sha, source, options string, patterns int, charmap []byte) (int64, error) {
	var id int64
	switch err := h.db.QueryRow("SELECT id FROM conversion WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := h.db.Exec("INSERT INTO conversion (sha1, source, options, patterns, charmap) VALUES (?, ?, ?, ?, ?)", sha, source, options, patterns, charmap)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	case nil:
		if _, err := h.db.Exec("UPDATE conversion SET source = ?, options = ?, patterns = ?, charmap = ? WHERE id = ?", source, options, patterns, charmap, id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, err
	}
}

// FindBySHA1 returns the recorded conversion for the given content
// hash, or nil if none exists.
func (h *HistoryDB) FindBySHA1(sha string) (*HistoryEntry, error) {
	e := HistoryEntry{SHA1: sha}
	switch err := h.db.QueryRow("SELECT id, source, options, patterns, created FROM conversion WHERE sha1 = ?", sha).Scan(&e.ID, &e.Source, &e.Options, &e.Patterns, &e.Created); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &e, nil
	default:
		return nil, err
	}
}

// Charmap returns the stored 2048 byte character bitmap for a recorded
// conversion.
func (h *HistoryDB) Charmap(id int64) ([]byte, error) {
	var b []byte
	if err := h.db.QueryRow("SELECT charmap FROM conversion WHERE id = ?", id).Scan(&b); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all recorded conversions, most recent first.
func (h *HistoryDB) List() ([]HistoryEntry, error) {
	rows, err := h.db.Query("SELECT id, sha1, source, options, patterns, created FROM conversion ORDER BY created DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SHA1, &e.Source, &e.Options, &e.Patterns, &e.Created); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
