package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

const startText = "Hi, song searching is only available inline.\n" +
	"Start searching by clicking the button below"

// handleMessage routes slash commands. Anything else in a private chat gets
// a polite rebuff; group chatter is ignored entirely.
func (b *Bot) handleMessage(ctx context.Context, log zerolog.Logger, msg telegram.Message) error {
	command, ok := parseCommand(msg.Text)
	if !ok {
		if msg.IsPrivate() {
			b.metrics.Commands.WithLabelValues("unknown").Inc()
			return b.api.SendMessage(ctx, msg.Chat.ID, "Unknown command!", telegram.SendMessageParams{})
		}
		return nil
	}

	switch command {
	case "start":
		b.metrics.Commands.WithLabelValues("start").Inc()
		return b.sendStart(ctx, msg)
	case "history":
		b.metrics.Commands.WithLabelValues("history").Inc()
		return b.sendSongList(ctx, msg, "Your last %d searches:", b.historyFor)
	case "liked":
		b.metrics.Commands.WithLabelValues("liked").Inc()
		return b.sendSongList(ctx, msg, "Your last %d liked songs:", b.likedFor)
	default:
		if msg.IsPrivate() {
			b.metrics.Commands.WithLabelValues("unknown").Inc()
			return b.api.SendMessage(ctx, msg.Chat.ID, "Unknown command!", telegram.SendMessageParams{})
		}
		log.Debug().Str("command", command).Msg("ignoring command outside private chat")
		return nil
	}
}

// parseCommand extracts the command name from a message like
// "/history@deezer_bot extra words". ok is false for non-command text.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", false
	}
	command, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(command), command != ""
}

func (b *Bot) sendStart(ctx context.Context, msg telegram.Message) error {
	searchHint := ""
	return b.api.SendMessage(ctx, msg.Chat.ID, startText, telegram.SendMessageParams{
		ReplyMarkup: telegram.SingleButton(telegram.InlineKeyboardButton{
			Text:                         "Search a song",
			SwitchInlineQueryCurrentChat: &searchHint,
		}),
	})
}

func (b *Bot) historyFor(ctx context.Context, userID int64) ([]store.CachedSong, error) {
	return b.store.History(ctx, userID, historyLimit, false)
}

func (b *Bot) likedFor(ctx context.Context, userID int64) ([]store.CachedSong, error) {
	return b.store.Likes(ctx, userID, historyLimit)
}

func (b *Bot) sendSongList(ctx context.Context, msg telegram.Message, header string, fetch func(context.Context, int64) ([]store.CachedSong, error)) error {
	if msg.From == nil {
		return b.api.SendMessage(ctx, msg.Chat.ID,
			"Sorry, this command is only available for users!", telegram.SendMessageParams{})
	}

	songs, err := fetch(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("list songs: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>"+header+"</b>\n", historyLimit)
	for i, song := range songs {
		fmt.Fprintf(&sb, "\n%d) %s - %s", i+1,
			html.EscapeString(song.Artist), html.EscapeString(song.Title))
	}
	if len(songs) == 0 {
		sb.WriteString("\nNothing here yet!")
	}

	return b.api.SendMessage(ctx, msg.Chat.ID, sb.String(), telegram.SendMessageParams{
		ParseMode: "HTML",
	})
}
