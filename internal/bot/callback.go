package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/encoding"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

const (
	ackNothing = "Nothing to see here!"
	ackLiked   = "You liked the song!"
	ackUnliked = "You unliked the song!"
)

// handleCallback answers button presses. Every press is acknowledged, even
// unreadable payloads, so the client never shows a stuck spinner.
func (b *Bot) handleCallback(ctx context.Context, log zerolog.Logger, cb telegram.CallbackQuery) error {
	token, err := encoding.DecodeCallback(cb.Data)
	if err != nil {
		log.Warn().Err(err).Str("data", cb.Data).Msg("unreadable callback payload")
		b.metrics.Callbacks.WithLabelValues("invalid").Inc()
		return b.api.AnswerCallbackQuery(ctx, cb.ID, ackNothing)
	}

	switch token := token.(type) {
	case encoding.NothingToken:
		b.metrics.Callbacks.WithLabelValues("nothing").Inc()
		return b.api.AnswerCallbackQuery(ctx, cb.ID, ackNothing)
	case encoding.LikeToken:
		b.metrics.Callbacks.WithLabelValues("like").Inc()
		return b.toggleLike(ctx, log, cb, token.SongID)
	default:
		return fmt.Errorf("unhandled callback token %T", token)
	}
}

func (b *Bot) toggleLike(ctx context.Context, log zerolog.Logger, cb telegram.CallbackQuery, songID int32) error {
	// The message sender is whoever surfaced the song; the presser is the
	// one whose like flips. In inline mode there is no message, the presser
	// stands in for both.
	surfacedBy := cb.From.ID
	if cb.Message != nil && cb.Message.From != nil {
		surfacedBy = cb.Message.From.ID
	}

	liked, err := b.store.ToggleLike(ctx, cb.From.ID, songID, surfacedBy)
	if err != nil {
		return fmt.Errorf("toggle like: %w", err)
	}

	ack := ackUnliked
	if liked {
		ack = ackLiked
	}
	if err := b.api.AnswerCallbackQuery(ctx, cb.ID, ack); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}

	// The toggle itself is durable; refreshing the visible count may fail
	// without unwinding it.
	if cb.InlineMessageID == "" {
		return nil
	}
	likes, err := b.store.LikeCount(ctx, songID)
	if err != nil {
		log.Warn().Err(err).Int32("song_id", songID).Msg("like count refresh skipped")
		return nil
	}
	if err := b.api.EditMessageReplyMarkup(ctx, cb.InlineMessageID, songMarkup(songID, likes)); err != nil {
		log.Warn().Err(err).Int32("song_id", songID).Msg("markup refresh failed")
	}

	return nil
}
