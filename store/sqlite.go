package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/query"
)

// SqliteStore keeps records in a private in-memory SQLite database, so data
// is lost on restart just like MemoryStore. Filters are evaluated by SQLite.
//
// Table:
//
//	strings(seq, id UNIQUE, value, length, is_palindrome, unique_characters,
//	        word_count, sha256_hash, character_frequency_map, created_at)
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

func NewSqliteStore() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// Every connection to :memory: is a separate database; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS strings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		value TEXT NOT NULL,
		length INTEGER NOT NULL,
		is_palindrome BOOLEAN NOT NULL,
		unique_characters INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		sha256_hash TEXT NOT NULL,
		character_frequency_map TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create strings table")
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS strings_value ON strings (value)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create value index")
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, value, length, is_palindrome, unique_characters,
	word_count, sha256_hash, character_frequency_map, created_at FROM strings`

func (s *SqliteStore) Insert(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	freq, err := json.Marshal(rec.Properties.CharacterFrequencyMap)
	if err != nil {
		return errors.Wrap(err, "encode character frequency map")
	}
	p := rec.Properties
	_, err = s.db.Exec(
		`INSERT INTO strings (id, value, length, is_palindrome, unique_characters,
			word_count, sha256_hash, character_frequency_map, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Value, p.Length, p.IsPalindrome, p.UniqueCharacters,
		p.WordCount, p.SHA256Hash, string(freq), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return errors.Wrapf(errors.ErrConflict, "id %s", rec.ID)
	}
	if err != nil {
		return errors.Wrap(err, "insert string")
	}
	return nil
}

func (s *SqliteStore) Get(value string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := scanRecord(s.db.QueryRow(selectColumns+" WHERE value = ?", value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SqliteStore) List(c query.Criteria) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	where, args := whereClause(c)
	rows, err := s.db.Query(selectColumns+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, errors.Wrap(err, "query strings")
	}
	defer rows.Close()
	result := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (s *SqliteStore) Delete(value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("DELETE FROM strings WHERE value = ?", value)
	if err != nil {
		return false, errors.Wrap(err, "delete string")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *SqliteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM strings").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count strings")
	}
	return n, nil
}

// whereClause mirrors query.Criteria.Match in SQL.
func whereClause(c query.Criteria) (string, []any) {
	var conds []string
	var args []any
	if c.IsPalindrome != nil {
		conds = append(conds, "is_palindrome = ?")
		args = append(args, *c.IsPalindrome)
	}
	if c.MinLength != nil {
		conds = append(conds, "length >= ?")
		args = append(args, *c.MinLength)
	}
	if c.MaxLength != nil {
		conds = append(conds, "length <= ?")
		args = append(args, *c.MaxLength)
	}
	if c.WordCount != nil {
		conds = append(conds, "word_count = ?")
		args = append(args, *c.WordCount)
	}
	if c.ContainsCharacter != nil {
		conds = append(conds, "instr(value, ?) > 0")
		args = append(args, *c.ContainsCharacter)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		freq      string
		createdAt string
	)
	p := &rec.Properties
	if err := row.Scan(&rec.ID, &rec.Value, &p.Length, &p.IsPalindrome, &p.UniqueCharacters,
		&p.WordCount, &p.SHA256Hash, &freq, &createdAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(freq), &p.CharacterFrequencyMap); err != nil {
		return Record{}, errors.Wrapf(err, "decode character frequency map for %s", rec.ID)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, errors.Wrapf(err, "decode created_at for %s", rec.ID)
	}
	rec.CreatedAt = t
	return rec, nil
}
