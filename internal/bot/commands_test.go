package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/Stockpesce/deezer-bot/internal/store"
	"github.com/Stockpesce/deezer-bot/internal/telegram"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"/start", "start", true},
		{"/HISTORY", "history", true},
		{"/liked@deezer_bot", "liked", true},
		{"/start deep link payload", "start", true},
		{"hello there", "", false},
		{"/", "", false},
		{"/   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := parseCommand(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseCommand(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStartCommand(t *testing.T) {
	api := &stubMessenger{}
	b := newTestBot(api, &stubStore{}, &stubSearcher{}, &stubDownloader{})

	msg := telegram.Message{
		From: &telegram.User{ID: 10},
		Chat: telegram.Chat{ID: 10, Type: "private"},
		Text: "/start",
	}
	if err := b.handleMessage(context.Background(), b.log, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	if len(api.sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(api.sent))
	}
	sent := api.sent[0]
	if sent.chatID != 10 || !strings.HasPrefix(sent.text, "Hi, song searching") {
		t.Fatalf("unexpected message: %+v", sent)
	}
	button, err := likeButton(sent.params.ReplyMarkup)
	if err != nil {
		t.Fatal(err)
	}
	if button.SwitchInlineQueryCurrentChat == nil || *button.SwitchInlineQueryCurrentChat != "" {
		t.Fatalf("start button must open an empty inline query: %+v", button)
	}
}

func TestHistoryCommandFormatsList(t *testing.T) {
	st := &stubStore{histSongs: []store.CachedSong{
		{ID: 1, Title: "Song <One>", Artist: "A & B"},
		{ID: 2, Title: "Two", Artist: "C"},
	}}
	api := &stubMessenger{}
	b := newTestBot(api, st, &stubSearcher{}, &stubDownloader{})

	msg := telegram.Message{
		From: &telegram.User{ID: 10},
		Chat: telegram.Chat{ID: 10, Type: "private"},
		Text: "/history",
	}
	if err := b.handleMessage(context.Background(), b.log, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	if len(st.historyCalls) != 1 || st.historyCalls[0] {
		t.Fatalf("history calls = %v, want one read with repeats", st.historyCalls)
	}
	if len(api.sent) != 1 {
		t.Fatalf("got %d messages, want 1", len(api.sent))
	}
	sent := api.sent[0]
	if sent.params.ParseMode != "HTML" {
		t.Fatalf("parse mode = %q, want HTML", sent.params.ParseMode)
	}
	for _, want := range []string{"1) A &amp; B - Song &lt;One&gt;", "2) C - Two"} {
		if !strings.Contains(sent.text, want) {
			t.Fatalf("message %q missing %q", sent.text, want)
		}
	}
}

func TestLikedCommandEmpty(t *testing.T) {
	api := &stubMessenger{}
	b := newTestBot(api, &stubStore{}, &stubSearcher{}, &stubDownloader{})

	msg := telegram.Message{
		From: &telegram.User{ID: 10},
		Chat: telegram.Chat{ID: 10, Type: "private"},
		Text: "/liked",
	}
	if err := b.handleMessage(context.Background(), b.log, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	if len(api.sent) != 1 || !strings.Contains(api.sent[0].text, "Nothing here yet!") {
		t.Fatalf("messages = %+v", api.sent)
	}
}

func TestCommandWithoutSender(t *testing.T) {
	api := &stubMessenger{}
	b := newTestBot(api, &stubStore{}, &stubSearcher{}, &stubDownloader{})

	msg := telegram.Message{
		Chat: telegram.Chat{ID: -50, Type: "channel"},
		Text: "/history",
	}
	if err := b.handleMessage(context.Background(), b.log, msg); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	if len(api.sent) != 1 || !strings.Contains(api.sent[0].text, "only available for users") {
		t.Fatalf("messages = %+v", api.sent)
	}
}

func TestUnknownCommandPrivateOnly(t *testing.T) {
	api := &stubMessenger{}
	b := newTestBot(api, &stubStore{}, &stubSearcher{}, &stubDownloader{})

	private := telegram.Message{
		From: &telegram.User{ID: 10},
		Chat: telegram.Chat{ID: 10, Type: "private"},
		Text: "/frobnicate",
	}
	if err := b.handleMessage(context.Background(), b.log, private); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0].text != "Unknown command!" {
		t.Fatalf("messages = %+v", api.sent)
	}

	group := telegram.Message{
		From: &telegram.User{ID: 10},
		Chat: telegram.Chat{ID: -40, Type: "supergroup"},
		Text: "/frobnicate",
	}
	if err := b.handleMessage(context.Background(), b.log, group); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("group chatter must be ignored: %+v", api.sent)
	}
}
