package store

import (
	"context"
	"fmt"
)

// ToggleLike flips the user's like on a song and reports the new state.
// The first toggle for a (user, song) pair inserts a liked row; later
// toggles negate it in place. The single statement keeps concurrent toggles
// on the same pair serialized by the row lock, so no update is lost.
func (s *Store) ToggleLike(ctx context.Context, userID int64, songID int32, surfacedBy int64) (bool, error) {
	var liked bool
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO likes (user_id, song_id, from_user, liked)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, song_id)
		DO UPDATE SET liked = NOT likes.liked, updated_at = NOW()
		RETURNING liked
	`, userID, songID, surfacedBy).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("toggle like: %w", err)
	}
	return liked, nil
}

// LikeCount returns how many users currently like the song.
func (s *Store) LikeCount(ctx context.Context, songID int32) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM likes
		WHERE song_id = $1 AND liked
	`, songID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// Likes returns the songs the user currently likes, most recently toggled
// first.
func (s *Store) Likes(ctx context.Context, userID int64, limit int) ([]CachedSong, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.deezer_id, s.file_id, s.song_name, s.song_artist
		FROM likes l
		JOIN songs s ON l.song_id = s.id
		WHERE l.user_id = $1 AND l.liked
		ORDER BY l.updated_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	return scanSongs(rows)
}
