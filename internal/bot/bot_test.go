package bot

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Stockpesce/deezer-bot/internal/deezer"
	"github.com/Stockpesce/deezer-bot/internal/metrics"
	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

type historyEntry struct {
	userID int64
	songID int32
}

type toggleCall struct {
	userID     int64
	songID     int32
	surfacedBy int64
}

type stubStore struct {
	songs      []store.CachedSong
	histSongs  []store.CachedSong
	likedSongs []store.CachedSong
	likeCounts map[int32]int64

	insertErr    error
	nextID       int32
	toggleResult bool

	inserted     []store.CachedSong
	pushed       []historyEntry
	toggleCalls  []toggleCall
	historyCalls []bool
}

func (s *stubStore) FindByDeezerIDs(_ context.Context, ids []uint64) ([]store.CachedSong, error) {
	var found []store.CachedSong
	for _, song := range s.songs {
		for _, id := range ids {
			if song.DeezerID == id {
				found = append(found, song)
			}
		}
	}
	return found, nil
}

func (s *stubStore) InsertSong(_ context.Context, deezerID uint64, fileID, title, artist string) (store.CachedSong, error) {
	if s.insertErr != nil {
		return store.CachedSong{}, s.insertErr
	}
	s.nextID++
	song := store.CachedSong{ID: s.nextID, DeezerID: deezerID, FileID: fileID, Title: title, Artist: artist}
	s.inserted = append(s.inserted, song)
	return song, nil
}

func (s *stubStore) PushHistory(_ context.Context, userID int64, songID int32) error {
	s.pushed = append(s.pushed, historyEntry{userID: userID, songID: songID})
	return nil
}

func (s *stubStore) History(_ context.Context, _ int64, _ int, noRepeat bool) ([]store.CachedSong, error) {
	s.historyCalls = append(s.historyCalls, noRepeat)
	return s.histSongs, nil
}

func (s *stubStore) ToggleLike(_ context.Context, userID int64, songID int32, surfacedBy int64) (bool, error) {
	s.toggleCalls = append(s.toggleCalls, toggleCall{userID: userID, songID: songID, surfacedBy: surfacedBy})
	return s.toggleResult, nil
}

func (s *stubStore) LikeCount(_ context.Context, songID int32) (int64, error) {
	return s.likeCounts[songID], nil
}

func (s *stubStore) Likes(_ context.Context, _ int64, _ int) ([]store.CachedSong, error) {
	return s.likedSongs, nil
}

type stubSearcher struct {
	tracks []deezer.Track
	err    error

	terms []string
}

func (s *stubSearcher) Search(_ context.Context, term string, _ int) ([]deezer.Track, error) {
	s.terms = append(s.terms, term)
	return s.tracks, s.err
}

type stubDownloader struct {
	song     *deezer.Song
	err      error
	cover    []byte
	coverErr error

	downloaded []uint64
}

func (d *stubDownloader) DownloadSong(_ context.Context, id uint64) (*deezer.Song, error) {
	d.downloaded = append(d.downloaded, id)
	return d.song, d.err
}

func (d *stubDownloader) FetchCover(_ context.Context, _ string) ([]byte, error) {
	return d.cover, d.coverErr
}

type answeredQuery struct {
	queryID   string
	results   []telegram.InlineQueryResult
	cacheTime int
}

type editedMedia struct {
	inlineMessageID string
	audioFileID     string
	markup          *telegram.InlineKeyboardMarkup
}

type editedMarkup struct {
	inlineMessageID string
	markup          *telegram.InlineKeyboardMarkup
}

type callbackAnswer struct {
	callbackID string
	text       string
}

type sentMessage struct {
	chatID int64
	text   string
	params telegram.SendMessageParams
}

type stubMessenger struct {
	uploadFileID string
	sendAudioErr error

	answered     []answeredQuery
	sentAudio    []telegram.SendAudioParams
	editedMedia  []editedMedia
	editedMarkup []editedMarkup
	acks         []callbackAnswer
	sent         []sentMessage
}

func (m *stubMessenger) AnswerInlineQuery(_ context.Context, queryID string, results []telegram.InlineQueryResult, cacheTime int) error {
	m.answered = append(m.answered, answeredQuery{queryID: queryID, results: results, cacheTime: cacheTime})
	return nil
}

func (m *stubMessenger) SendAudio(_ context.Context, params telegram.SendAudioParams) (*telegram.Message, error) {
	if m.sendAudioErr != nil {
		return nil, m.sendAudioErr
	}
	m.sentAudio = append(m.sentAudio, params)
	return &telegram.Message{
		MessageID: int64(len(m.sentAudio)),
		Audio:     &telegram.Audio{FileID: m.uploadFileID},
	}, nil
}

func (m *stubMessenger) EditMessageMedia(_ context.Context, inlineMessageID, audioFileID string, markup *telegram.InlineKeyboardMarkup) error {
	m.editedMedia = append(m.editedMedia, editedMedia{inlineMessageID: inlineMessageID, audioFileID: audioFileID, markup: markup})
	return nil
}

func (m *stubMessenger) EditMessageReplyMarkup(_ context.Context, inlineMessageID string, markup *telegram.InlineKeyboardMarkup) error {
	m.editedMarkup = append(m.editedMarkup, editedMarkup{inlineMessageID: inlineMessageID, markup: markup})
	return nil
}

func (m *stubMessenger) AnswerCallbackQuery(_ context.Context, callbackID, text string) error {
	m.acks = append(m.acks, callbackAnswer{callbackID: callbackID, text: text})
	return nil
}

func (m *stubMessenger) SendMessage(_ context.Context, chatID int64, text string, params telegram.SendMessageParams) error {
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text, params: params})
	return nil
}

func newTestBot(api *stubMessenger, st *stubStore, search *stubSearcher, dl *stubDownloader) *Bot {
	return New(Deps{
		API:           api,
		Store:         st,
		Search:        search,
		Downloader:    dl,
		Metrics:       metrics.New(prometheus.NewRegistry()),
		Logger:        zerolog.Nop(),
		BufferChannel: -100200300,
	})
}

func likeButton(markup *telegram.InlineKeyboardMarkup) (telegram.InlineKeyboardButton, error) {
	if markup == nil || len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		return telegram.InlineKeyboardButton{}, fmt.Errorf("markup is not a single button: %+v", markup)
	}
	return markup.InlineKeyboard[0][0], nil
}
