package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

// handleInlineQuery answers a live inline search. An empty query shows the
// caller's own history; anything shorter than the minimum length is
// answered empty so that remote search doesn't fire on every keystroke.
func (b *Bot) handleInlineQuery(ctx context.Context, log zerolog.Logger, query telegram.InlineQuery) error {
	switch length := len(query.Query); {
	case length == 0:
		b.metrics.InlineQueries.WithLabelValues("history").Inc()
		return b.answerWithHistory(ctx, log, query)
	case length >= minQueryLen:
		b.metrics.InlineQueries.WithLabelValues("search").Inc()
		return b.answerWithSearch(ctx, log, query)
	default:
		b.metrics.InlineQueries.WithLabelValues("debounce").Inc()
		return b.api.AnswerInlineQuery(ctx, query.ID, nil, inlineCacheTime)
	}
}

func (b *Bot) answerWithHistory(ctx context.Context, log zerolog.Logger, query telegram.InlineQuery) error {
	songs, err := b.store.History(ctx, query.From.ID, historyLimit, true)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	log.Info().Int64("user_id", query.From.ID).Int("results", len(songs)).Msg("showing history results")

	results := make([]telegram.InlineQueryResult, 0, len(songs))
	for _, song := range songs {
		likes, err := b.store.LikeCount(ctx, song.ID)
		if err != nil {
			return fmt.Errorf("count likes for song %d: %w", song.ID, err)
		}
		results = append(results, cachedResult(song, likes))
	}

	return b.api.AnswerInlineQuery(ctx, query.ID, results, inlineCacheTime)
}

func (b *Bot) answerWithSearch(ctx context.Context, log zerolog.Logger, query telegram.InlineQuery) error {
	log.Info().Str("term", query.Query).Msg("searching on deezer")

	tracks, hit := b.cache.Get(ctx, query.Query, searchLimit)
	if !hit {
		var err error
		tracks, err = b.search.Search(ctx, query.Query, searchLimit)
		if err != nil {
			return fmt.Errorf("search %q: %w", query.Query, err)
		}
		b.cache.Set(ctx, query.Query, searchLimit, tracks)
	}

	ids := make([]uint64, len(tracks))
	for i, track := range tracks {
		ids[i] = track.ID
	}

	cached, err := b.store.FindByDeezerIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("look up cached songs: %w", err)
	}
	byDeezerID := make(map[uint64]store.CachedSong, len(cached))
	for _, song := range cached {
		byDeezerID[song.DeezerID] = song
	}

	// Cached results first, then the rest; both halves keep the remote
	// ranking among themselves.
	results := make([]telegram.InlineQueryResult, 0, len(tracks))
	for _, track := range tracks {
		song, ok := byDeezerID[track.ID]
		if !ok {
			continue
		}
		likes, err := b.store.LikeCount(ctx, song.ID)
		if err != nil {
			return fmt.Errorf("count likes for song %d: %w", song.ID, err)
		}
		results = append(results, cachedResult(song, likes))
	}
	for _, track := range tracks {
		if _, ok := byDeezerID[track.ID]; !ok {
			results = append(results, pendingResult(track))
		}
	}

	return b.api.AnswerInlineQuery(ctx, query.ID, results, inlineCacheTime)
}
