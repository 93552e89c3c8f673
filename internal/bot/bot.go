// Package bot wires the inline-search and deferred-download pipeline: it
// answers inline queries from the cache and the remote catalog, downloads
// and caches tracks when a result is selected, and processes like-button
// presses.
package bot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/deezer"
	"github.com/Stockpesce/deezer-bot/internal/metrics"
	"github.com/Stockpesce/deezer-bot/internal/searchcache"
	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

const (
	searchLimit     = 5
	historyLimit    = 10
	minQueryLen     = 3
	inlineCacheTime = 0

	pollTimeout = 30 // seconds held server-side per getUpdates

	queryBudget    = 10 * time.Second
	chosenBudget   = 90 * time.Second
	callbackBudget = 10 * time.Second
	commandBudget  = 10 * time.Second
)

// SongStore captures the persistence operations the handlers need.
type SongStore interface {
	FindByDeezerIDs(ctx context.Context, ids []uint64) ([]store.CachedSong, error)
	InsertSong(ctx context.Context, deezerID uint64, fileID, title, artist string) (store.CachedSong, error)
	PushHistory(ctx context.Context, userID int64, songID int32) error
	History(ctx context.Context, userID int64, limit int, noRepeat bool) ([]store.CachedSong, error)
	ToggleLike(ctx context.Context, userID int64, songID int32, surfacedBy int64) (bool, error)
	LikeCount(ctx context.Context, songID int32) (int64, error)
	Likes(ctx context.Context, userID int64, limit int) ([]store.CachedSong, error)
}

// Searcher queries the remote catalog.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]deezer.Track, error)
}

// Downloader fetches full audio and cover art for a catalog track.
type Downloader interface {
	DownloadSong(ctx context.Context, id uint64) (*deezer.Song, error)
	FetchCover(ctx context.Context, coverURL string) ([]byte, error)
}

// Messenger is the outbound half of the messaging endpoint.
type Messenger interface {
	AnswerInlineQuery(ctx context.Context, queryID string, results []telegram.InlineQueryResult, cacheTime int) error
	SendAudio(ctx context.Context, params telegram.SendAudioParams) (*telegram.Message, error)
	EditMessageMedia(ctx context.Context, inlineMessageID, audioFileID string, markup *telegram.InlineKeyboardMarkup) error
	EditMessageReplyMarkup(ctx context.Context, inlineMessageID string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
	SendMessage(ctx context.Context, chatID int64, text string, params telegram.SendMessageParams) error
}

// UpdateSource is the inbound half of the messaging endpoint.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Deps are the collaborators a Bot is built from.
type Deps struct {
	API           Messenger
	Updates       UpdateSource
	Store         SongStore
	Search        Searcher
	Downloader    Downloader
	SearchCache   *searchcache.Cache // nil disables caching
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	BufferChannel int64
}

// Bot dispatches inbound updates to the pipeline handlers.
type Bot struct {
	api           Messenger
	updates       UpdateSource
	store         SongStore
	search        Searcher
	downloader    Downloader
	cache         *searchcache.Cache
	metrics       *metrics.Metrics
	log           zerolog.Logger
	bufferChannel int64
}

// New assembles a Bot from its collaborators.
func New(deps Deps) *Bot {
	return &Bot{
		api:           deps.API,
		updates:       deps.Updates,
		store:         deps.Store,
		search:        deps.Search,
		downloader:    deps.Downloader,
		cache:         deps.SearchCache,
		metrics:       deps.Metrics,
		log:           deps.Logger,
		bufferChannel: deps.BufferChannel,
	}
}

// Commands is the menu registered with the messaging endpoint at startup.
func Commands() []telegram.BotCommand {
	return []telegram.BotCommand{
		{Command: "start", Description: "Show start message"},
		{Command: "history", Description: "Display your search history"},
		{Command: "liked", Description: "Get a list of your favorite songs"},
	}
}

// Run long-polls for updates until ctx is cancelled. Each update is handled
// on its own goroutine; there is no ordering across updates.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := b.updates.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Error().Err(err).Msg("getUpdates failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			if update.ID >= offset {
				offset = update.ID + 1
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	b.metrics.Updates.Inc()

	log := b.log.With().Str("update", uuid.NewString()).Logger()

	switch {
	case update.InlineQuery != nil:
		ctx, cancel := context.WithTimeout(ctx, queryBudget)
		defer cancel()
		if err := b.handleInlineQuery(ctx, log, *update.InlineQuery); err != nil {
			log.Error().Err(err).Int64("user_id", update.InlineQuery.From.ID).Msg("inline query failed")
		}
	case update.ChosenInlineResult != nil:
		ctx, cancel := context.WithTimeout(ctx, chosenBudget)
		defer cancel()
		if err := b.handleChosenResult(ctx, log, *update.ChosenInlineResult); err != nil {
			log.Error().Err(err).Int64("user_id", update.ChosenInlineResult.From.ID).Msg("chosen result failed")
		}
	case update.CallbackQuery != nil:
		ctx, cancel := context.WithTimeout(ctx, callbackBudget)
		defer cancel()
		if err := b.handleCallback(ctx, log, *update.CallbackQuery); err != nil {
			log.Error().Err(err).Int64("user_id", update.CallbackQuery.From.ID).Msg("callback failed")
		}
	case update.Message != nil:
		ctx, cancel := context.WithTimeout(ctx, commandBudget)
		defer cancel()
		if err := b.handleMessage(ctx, log, *update.Message); err != nil {
			log.Error().Err(err).Msg("message failed")
		}
	}
}
