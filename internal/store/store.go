// Package store is the persistence boundary for the song cache: cached
// songs, play history, and likes, backed by Postgres.
package store

import (
	"database/sql"
	"errors"
	"math"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSongExists signals the deezer id already has a cache row. Two
	// concurrent downloads of the same track race to insert; the loser
	// observes this and re-reads the winning row.
	ErrSongExists = errors.New("song already cached")
	// ErrSongNotFound indicates a lookup for an id with no cache row.
	ErrSongNotFound = errors.New("song not found")
	// ErrIDOutOfRange indicates a deezer id too large for a Postgres bigint.
	ErrIDOutOfRange = errors.New("deezer id out of range")
)

// CachedSong is the durable record of a track whose audio has been uploaded
// through the messaging endpoint at least once. Rows are never mutated or
// deleted.
type CachedSong struct {
	ID       int32
	DeezerID uint64
	FileID   string
	Title    string
	Artist   string
}

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// deezer ids come off the wire unsigned; Postgres bigints are signed.
func toBigint(id uint64) (int64, error) {
	if id > math.MaxInt64 {
		return 0, ErrIDOutOfRange
	}
	return int64(id), nil
}
