package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/encoding"
	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

// handleChosenResult runs when a user picks an inline result. The result id
// carries everything needed to resume: either the song is already cached
// and only history is recorded, or the track must be downloaded, uploaded
// and cached before the placeholder message can be filled in.
func (b *Bot) handleChosenResult(ctx context.Context, log zerolog.Logger, chosen telegram.ChosenInlineResult) error {
	token, err := encoding.DecodeQuery(chosen.ResultID)
	if err != nil {
		b.metrics.ChosenResults.WithLabelValues("decode_error").Inc()
		return fmt.Errorf("decode result id: %w", err)
	}

	switch token := token.(type) {
	case encoding.CachedToken:
		b.metrics.ChosenResults.WithLabelValues("cached").Inc()
		return b.consumeCached(ctx, log, chosen, token.SongID)
	case encoding.DownloadToken:
		b.metrics.ChosenResults.WithLabelValues("download").Inc()
		return b.downloadAndCache(ctx, log, chosen, token.DeezerID)
	default:
		return fmt.Errorf("unhandled query token %T", token)
	}
}

func (b *Bot) consumeCached(ctx context.Context, log zerolog.Logger, chosen telegram.ChosenInlineResult, songID int32) error {
	if err := b.store.PushHistory(ctx, chosen.From.ID, songID); err != nil {
		return fmt.Errorf("push history: %w", err)
	}

	// History is already durable; the like-count refresh is best effort.
	if chosen.InlineMessageID == "" {
		return nil
	}
	likes, err := b.store.LikeCount(ctx, songID)
	if err != nil {
		log.Warn().Err(err).Int32("song_id", songID).Msg("like count refresh skipped")
		return nil
	}
	if err := b.api.EditMessageReplyMarkup(ctx, chosen.InlineMessageID, songMarkup(songID, likes)); err != nil {
		log.Warn().Err(err).Int32("song_id", songID).Msg("markup refresh failed")
	}

	return nil
}

func (b *Bot) downloadAndCache(ctx context.Context, log zerolog.Logger, chosen telegram.ChosenInlineResult, deezerID uint64) error {
	if chosen.InlineMessageID == "" {
		return errors.New("chosen result carried no inline message id")
	}

	song, err := b.downloader.DownloadSong(ctx, deezerID)
	if err != nil {
		return fmt.Errorf("download track %d: %w", deezerID, err)
	}

	// A cover failure aborts the whole selection. Arguably it should only
	// drop the thumbnail; kept strict to match the established behavior.
	cover, err := b.downloader.FetchCover(ctx, song.CoverURL)
	if err != nil {
		return fmt.Errorf("fetch cover: %w", err)
	}

	message, err := b.api.SendAudio(ctx, telegram.SendAudioParams{
		ChatID:    b.bufferChannel,
		Audio:     song.Content,
		Title:     song.Title,
		Performer: song.Artist,
		Thumbnail: cover,
	})
	if err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}
	if message.Audio == nil {
		return errors.New("upload reply carried no audio")
	}

	cached, err := b.store.InsertSong(ctx, deezerID, message.Audio.FileID, song.Title, song.Artist)
	switch {
	case errors.Is(err, store.ErrSongExists):
		// Lost the insert race: a concurrent selection of the same track
		// cached it first. Re-read the winning row and carry on.
		winners, findErr := b.store.FindByDeezerIDs(ctx, []uint64{deezerID})
		if findErr != nil {
			return fmt.Errorf("re-read cached song: %w", findErr)
		}
		if len(winners) == 0 {
			return fmt.Errorf("track %d reported cached but not found", deezerID)
		}
		cached = winners[0]
		log.Info().Uint64("deezer_id", deezerID).Msg("concurrent selection cached this track first")
	case err != nil:
		return fmt.Errorf("cache song: %w", err)
	default:
		log.Info().Uint64("deezer_id", deezerID).Int32("song_id", cached.ID).Msg("caching a new song")
	}

	if err := b.api.EditMessageMedia(ctx, chosen.InlineMessageID, cached.FileID, songMarkup(cached.ID, 0)); err != nil {
		return fmt.Errorf("edit placeholder message: %w", err)
	}

	if err := b.store.PushHistory(ctx, chosen.From.ID, cached.ID); err != nil {
		return fmt.Errorf("push history: %w", err)
	}

	return nil
}
