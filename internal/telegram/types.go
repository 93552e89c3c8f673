package telegram

// Update is one inbound event from the Bot API. Exactly one of the optional
// fields is set.
type Update struct {
	ID                 int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
}

// User identifies a Telegram account.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Message is a chat message; only the fields the bot consumes are mapped.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Audio     *Audio `json:"audio,omitempty"`
}

// IsPrivate reports whether the message was sent in a one-on-one chat.
func (m *Message) IsPrivate() bool {
	return m.Chat.Type == "private"
}

// Audio is an uploaded audio file. FileID is the durable handle that lets
// the same upload be re-sent without transferring bytes again.
type Audio struct {
	FileID    string `json:"file_id"`
	Duration  int    `json:"duration,omitempty"`
	Performer string `json:"performer,omitempty"`
	Title     string `json:"title,omitempty"`
}

// InlineQuery is a live inline search from a user.
type InlineQuery struct {
	ID    string `json:"id"`
	From  User   `json:"from"`
	Query string `json:"query"`
}

// ChosenInlineResult reports which inline result a user selected.
// InlineMessageID is the handle of the placeholder message the selection
// produced, present when the result carried a reply markup.
type ChosenInlineResult struct {
	ResultID        string `json:"result_id"`
	From            User   `json:"from"`
	Query           string `json:"query,omitempty"`
	InlineMessageID string `json:"inline_message_id,omitempty"`
}

// CallbackQuery is a button press.
type CallbackQuery struct {
	ID              string   `json:"id"`
	From            User     `json:"from"`
	Data            string   `json:"data,omitempty"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
}

// InlineKeyboardMarkup is a grid of buttons attached below a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one button; exactly one action field should be
// set.
type InlineKeyboardButton struct {
	Text                         string  `json:"text"`
	CallbackData                 string  `json:"callback_data,omitempty"`
	SwitchInlineQueryCurrentChat *string `json:"switch_inline_query_current_chat,omitempty"`
}

// SingleButton builds a one-button markup, the only shape this bot uses.
func SingleButton(button InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{button}}}
}

// InlineQueryResult is one entry of an inline answer. The concrete types
// below are the two audio shapes the Bot API accepts.
type InlineQueryResult interface {
	inlineQueryResult()
}

// InlineQueryResultAudio previews an audio file reachable by URL.
type InlineQueryResultAudio struct {
	Type          string                `json:"type"`
	ID            string                `json:"id"`
	AudioURL      string                `json:"audio_url"`
	Title         string                `json:"title"`
	Performer     string                `json:"performer,omitempty"`
	AudioDuration int                   `json:"audio_duration,omitempty"`
	Caption       string                `json:"caption,omitempty"`
	ReplyMarkup   *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// InlineQueryResultCachedAudio re-sends an already uploaded audio by its
// file id.
type InlineQueryResultCachedAudio struct {
	Type        string                `json:"type"`
	ID          string                `json:"id"`
	AudioFileID string                `json:"audio_file_id"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (InlineQueryResultAudio) inlineQueryResult()       {}
func (InlineQueryResultCachedAudio) inlineQueryResult() {}

// InputMediaAudio references media for an edit; Media is an uploaded
// file id.
type InputMediaAudio struct {
	Type  string `json:"type"`
	Media string `json:"media"`
}

// BotCommand is one entry of the command menu registered at startup.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
