package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// FindByDeezerIDs returns the cached rows for the requested deezer ids.
// Ids with no cache row are simply omitted from the result.
func (s *Store) FindByDeezerIDs(ctx context.Context, ids []uint64) ([]CachedSong, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		converted, err := toBigint(id)
		if err != nil {
			return nil, fmt.Errorf("deezer id %d: %w", id, err)
		}
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, converted)
	}

	query := fmt.Sprintf(`
		SELECT id, deezer_id, file_id, song_name, song_artist
		FROM songs
		WHERE deezer_id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	return scanSongs(rows)
}

// InsertSong records a freshly uploaded track and returns the canonical row
// including the assigned internal id. The unique constraint on deezer_id
// turns a concurrent duplicate insert into ErrSongExists.
func (s *Store) InsertSong(ctx context.Context, deezerID uint64, fileID, title, artist string) (CachedSong, error) {
	converted, err := toBigint(deezerID)
	if err != nil {
		return CachedSong{}, fmt.Errorf("deezer id %d: %w", deezerID, err)
	}

	var song CachedSong
	var storedID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO songs (deezer_id, file_id, song_name, song_artist)
		VALUES ($1, $2, $3, $4)
		RETURNING id, deezer_id, file_id, song_name, song_artist
	`, converted, fileID, title, artist).Scan(&song.ID, &storedID, &song.FileID, &song.Title, &song.Artist)
	if err != nil {
		if isUniqueViolation(err) {
			return CachedSong{}, ErrSongExists
		}
		return CachedSong{}, fmt.Errorf("insert song: %w", err)
	}
	song.DeezerID = uint64(storedID)

	return song, nil
}

// SongByID returns the cached row for an internal song id.
func (s *Store) SongByID(ctx context.Context, id int32) (CachedSong, error) {
	var song CachedSong
	var storedID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, deezer_id, file_id, song_name, song_artist
		FROM songs
		WHERE id = $1
	`, id).Scan(&song.ID, &storedID, &song.FileID, &song.Title, &song.Artist)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CachedSong{}, ErrSongNotFound
		}
		return CachedSong{}, fmt.Errorf("query song %d: %w", id, err)
	}
	song.DeezerID = uint64(storedID)

	return song, nil
}

func scanSongs(rows *sql.Rows) ([]CachedSong, error) {
	var songs []CachedSong
	for rows.Next() {
		var song CachedSong
		var storedID int64
		if err := rows.Scan(&song.ID, &storedID, &song.FileID, &song.Title, &song.Artist); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		song.DeezerID = uint64(storedID)
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}
