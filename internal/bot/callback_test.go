package bot

import (
	"context"
	"testing"

	"github.com/Stockpesce/deezer-bot/internal/encoding"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

func TestCallbackNothingAcknowledged(t *testing.T) {
	api := &stubMessenger{}
	b := newTestBot(api, &stubStore{}, &stubSearcher{}, &stubDownloader{})

	cb := telegram.CallbackQuery{
		ID:   "cb1",
		From: telegram.User{ID: 10},
		Data: encoding.EncodeCallback(encoding.NothingToken{}),
	}
	if err := b.handleCallback(context.Background(), b.log, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if len(api.acks) != 1 || api.acks[0] != (callbackAnswer{callbackID: "cb1", text: ackNothing}) {
		t.Fatalf("acks = %+v", api.acks)
	}
}

func TestCallbackMalformedPayloadStillAnswered(t *testing.T) {
	api := &stubMessenger{}
	st := &stubStore{}
	b := newTestBot(api, st, &stubSearcher{}, &stubDownloader{})

	cb := telegram.CallbackQuery{ID: "cb2", From: telegram.User{ID: 10}, Data: "%%%"}
	if err := b.handleCallback(context.Background(), b.log, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if len(api.acks) != 1 || api.acks[0].text != ackNothing {
		t.Fatalf("acks = %+v", api.acks)
	}
	if len(st.toggleCalls) != 0 {
		t.Fatal("malformed payloads must not toggle likes")
	}
}

func TestCallbackLikeToggles(t *testing.T) {
	st := &stubStore{toggleResult: true, likeCounts: map[int32]int64{7: 3}}
	api := &stubMessenger{}
	b := newTestBot(api, st, &stubSearcher{}, &stubDownloader{})

	cb := telegram.CallbackQuery{
		ID:              "cb3",
		From:            telegram.User{ID: 10},
		Data:            encoding.EncodeCallback(encoding.LikeToken{SongID: 7}),
		InlineMessageID: "inline-4",
	}
	if err := b.handleCallback(context.Background(), b.log, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if len(st.toggleCalls) != 1 {
		t.Fatalf("got %d toggles, want 1", len(st.toggleCalls))
	}
	call := st.toggleCalls[0]
	if call.userID != 10 || call.songID != 7 || call.surfacedBy != 10 {
		t.Fatalf("toggle call = %+v", call)
	}
	if len(api.acks) != 1 || api.acks[0].text != ackLiked {
		t.Fatalf("acks = %+v", api.acks)
	}
	if len(api.editedMarkup) != 1 {
		t.Fatalf("got %d markup edits, want 1", len(api.editedMarkup))
	}
	button, err := likeButton(api.editedMarkup[0].markup)
	if err != nil {
		t.Fatal(err)
	}
	if button.Text != "Like (3)" {
		t.Fatalf("button text = %q", button.Text)
	}
}

func TestCallbackUnlikeAck(t *testing.T) {
	st := &stubStore{toggleResult: false}
	api := &stubMessenger{}
	b := newTestBot(api, st, &stubSearcher{}, &stubDownloader{})

	cb := telegram.CallbackQuery{
		ID:   "cb4",
		From: telegram.User{ID: 10},
		Data: encoding.EncodeCallback(encoding.LikeToken{SongID: 7}),
	}
	if err := b.handleCallback(context.Background(), b.log, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if len(api.acks) != 1 || api.acks[0].text != ackUnliked {
		t.Fatalf("acks = %+v", api.acks)
	}
	if len(api.editedMarkup) != 0 {
		t.Fatal("no inline message id, nothing to refresh")
	}
}

func TestCallbackLikeRecordsSurfacer(t *testing.T) {
	st := &stubStore{toggleResult: true}
	api := &stubMessenger{}
	b := newTestBot(api, st, &stubSearcher{}, &stubDownloader{})

	cb := telegram.CallbackQuery{
		ID:   "cb5",
		From: telegram.User{ID: 10},
		Data: encoding.EncodeCallback(encoding.LikeToken{SongID: 7}),
		Message: &telegram.Message{
			MessageID: 1,
			From:      &telegram.User{ID: 99},
			Chat:      telegram.Chat{ID: 10, Type: "private"},
		},
	}
	if err := b.handleCallback(context.Background(), b.log, cb); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if len(st.toggleCalls) != 1 || st.toggleCalls[0].surfacedBy != 99 {
		t.Fatalf("toggle calls = %+v, want surfacedBy 99", st.toggleCalls)
	}
}
