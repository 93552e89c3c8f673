package store

import (
	"context"
	"fmt"
)

// PushHistory appends a play record for the user. Duplicates are expected
// and meaningful; rows are never updated or removed.
func (s *Store) PushHistory(ctx context.Context, userID int64, songID int32) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO history (user_id, song_id)
		VALUES ($1, $2)
	`, userID, songID); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// History returns the user's most recently played songs, newest first. With
// noRepeat set, each song appears once, ordered by its latest occurrence.
func (s *Store) History(ctx context.Context, userID int64, limit int, noRepeat bool) ([]CachedSong, error) {
	query := `
		SELECT s.id, s.deezer_id, s.file_id, s.song_name, s.song_artist
		FROM history h
		JOIN songs s ON h.song_id = s.id
		WHERE h.user_id = $1
		ORDER BY h.id DESC
		LIMIT $2
	`
	if noRepeat {
		query = `
		SELECT s.id, s.deezer_id, s.file_id, s.song_name, s.song_artist
		FROM (
			SELECT song_id, MAX(id) AS last_id
			FROM history
			WHERE user_id = $1
			GROUP BY song_id
		) h
		JOIN songs s ON h.song_id = s.id
		ORDER BY h.last_id DESC
		LIMIT $2
	`
	}

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanSongs(rows)
}
