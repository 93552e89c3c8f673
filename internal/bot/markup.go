package bot

import (
	"fmt"

	"github.com/Stockpesce/deezer-bot/internal/deezer"
	"github.com/Stockpesce/deezer-bot/internal/encoding"
	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

const downloadingCaption = "The file is downloading... please wait."

// songMarkup is the like button attached under a cached song.
func songMarkup(songID int32, likes int64) *telegram.InlineKeyboardMarkup {
	return telegram.SingleButton(telegram.InlineKeyboardButton{
		Text:         fmt.Sprintf("Like (%d)", likes),
		CallbackData: encoding.EncodeCallback(encoding.LikeToken{SongID: songID}),
	})
}

// loadingMarkup is the placeholder button shown while a download is in
// flight. Pressing it is a harmless no-op.
func loadingMarkup() *telegram.InlineKeyboardMarkup {
	return telegram.SingleButton(telegram.InlineKeyboardButton{
		Text:         "Loading...",
		CallbackData: encoding.EncodeCallback(encoding.NothingToken{}),
	})
}

// cachedResult presents a song that is already durable: the result id
// carries a cached token and the audio is referenced by its upload handle,
// so no network fetch is needed.
func cachedResult(song store.CachedSong, likes int64) telegram.InlineQueryResult {
	return telegram.InlineQueryResultCachedAudio{
		Type:        "audio",
		ID:          encoding.EncodeQuery(encoding.CachedToken{SongID: song.ID}),
		AudioFileID: song.FileID,
		ReplyMarkup: songMarkup(song.ID, likes),
	}
}

// pendingResult presents a track with no cache row yet: the result id
// carries a download token and the short preview clip stands in for the
// audio so the user sees something immediately.
func pendingResult(track deezer.Track) telegram.InlineQueryResult {
	return telegram.InlineQueryResultAudio{
		Type:          "audio",
		ID:            encoding.EncodeQuery(encoding.DownloadToken{DeezerID: track.ID}),
		AudioURL:      track.Preview,
		Title:         track.Title,
		Performer:     track.Artist.Name,
		AudioDuration: track.Duration,
		Caption:       downloadingCaption,
		ReplyMarkup:   loadingMarkup(),
	}
}
