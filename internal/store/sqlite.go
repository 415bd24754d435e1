package store

import (
	"database/sql"
	"errors"
	"log"

	_ "modernc.org/sqlite"
)

const createKvTable = `CREATE TABLE IF NOT EXISTS kv(k TEXT PRIMARY KEY, v TEXT NOT NULL)`

// DB is a Store over a single-table sqlite database. The persisted state
// is one logical document with last-writer-wins semantics; the ledger is
// its sole mutator, so no transactional isolation is needed here.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the kv database at dataSourceName.
// On any failure it logs and hands back a Memory store instead, so the
// caller degrades to non-durable operation rather than failing.
func Open(driverName, dataSourceName string) Store {
	db, err := sql.Open(driverName, dataSourceName)
	if err == nil {
		_, err = db.Exec(createKvTable)
	}
	if err != nil {
		log.Printf("open state db %s failed, falling back to memory: %v", dataSourceName, err)
		if db != nil {
			_ = db.Close()
		}
		return NewMemory()
	}

	return &DB{db: db}
}

func (s *DB) Get(key string) (string, bool) {
	var v string
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false
	case err != nil:
		log.Printf("get state %s failed: %v", key, err)
		return "", false
	}

	return v, true
}

func (s *DB) Set(key, value string) {
	_, err := s.db.Exec(`INSERT INTO kv(k, v) VALUES(?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	if err != nil {
		log.Printf("set state %s failed: %v", key, err)
	}
}

// Close releases the underlying database handle.
func (s *DB) Close() error { return s.db.Close() }
