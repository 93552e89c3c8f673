// Package telegram is a thin client for the pieces of the Bot API this bot
// consumes: long polling, inline answers, audio upload, message edits and
// callback acknowledgements.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

const defaultAPIURL = "https://api.telegram.org"

// APIError is a Bot API rejection (non-ok envelope).
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s (code %d)", e.Description, e.Code)
}

// Client calls the Bot API for a single bot token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	// long polls must outlive the default timeout
	pollClient *http.Client
}

// NewClient creates a Bot API client. baseURL overrides the production
// endpoint when non-empty (used by tests).
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		pollClient: &http.Client{},
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// call posts a JSON payload to a Bot API method and decodes the result
// envelope into result when non-nil.
func (c *Client) call(ctx context.Context, client *http.Client, method string, payload any, result any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(method, resp.Body, result)
}

func decodeEnvelope(method string, body io.Reader, result any) error {
	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s: %w", method, &APIError{Code: envelope.ErrorCode, Description: envelope.Description})
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("parse %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for the next batch of updates. timeout is the
// server-side hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": timeout,
		"allowed_updates": []string{
			"message", "inline_query", "chosen_inline_result", "callback_query",
		},
	}

	var updates []Update
	if err := c.call(ctx, c.pollClient, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// AnswerInlineQuery replies to an inline query with ranked results.
func (c *Client) AnswerInlineQuery(ctx context.Context, queryID string, results []InlineQueryResult, cacheTime int) error {
	if results == nil {
		results = []InlineQueryResult{}
	}
	payload := map[string]any{
		"inline_query_id": queryID,
		"results":         results,
		"cache_time":      cacheTime,
	}
	return c.call(ctx, c.httpClient, "answerInlineQuery", payload, nil)
}

// SendAudioParams are the inputs for one audio upload.
type SendAudioParams struct {
	ChatID    int64
	Audio     []byte
	FileName  string
	Title     string
	Performer string
	Thumbnail []byte
}

// SendAudio uploads an audio file and returns the sent message, whose
// Audio.FileID is the durable handle for later re-sends.
func (c *Client) SendAudio(ctx context.Context, params SendAudioParams) (*Message, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"chat_id":   strconv.FormatInt(params.ChatID, 10),
		"title":     params.Title,
		"performer": params.Performer,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	fileName := params.FileName
	if fileName == "" {
		fileName = "audio.mp3"
	}
	part, err := writer.CreateFormFile("audio", fileName)
	if err != nil {
		return nil, fmt.Errorf("create audio part: %w", err)
	}
	if _, err := part.Write(params.Audio); err != nil {
		return nil, fmt.Errorf("write audio part: %w", err)
	}

	if len(params.Thumbnail) > 0 {
		thumb, err := writer.CreateFormFile("thumbnail", "cover.jpg")
		if err != nil {
			return nil, fmt.Errorf("create thumbnail part: %w", err)
		}
		if _, err := thumb.Write(params.Thumbnail); err != nil {
			return nil, fmt.Errorf("write thumbnail part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendAudio"), &buf)
	if err != nil {
		return nil, fmt.Errorf("build sendAudio request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sendAudio request: %w", err)
	}
	defer resp.Body.Close()

	var message Message
	if err := decodeEnvelope("sendAudio", resp.Body, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// EditMessageMedia swaps an inline message's content for an uploaded audio.
func (c *Client) EditMessageMedia(ctx context.Context, inlineMessageID, audioFileID string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"inline_message_id": inlineMessageID,
		"media":             InputMediaAudio{Type: "audio", Media: audioFileID},
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.call(ctx, c.httpClient, "editMessageMedia", payload, nil)
}

// EditMessageReplyMarkup replaces the button grid of an inline message.
func (c *Client) EditMessageReplyMarkup(ctx context.Context, inlineMessageID string, markup *InlineKeyboardMarkup) error {
	payload := map[string]any{
		"inline_message_id": inlineMessageID,
		"reply_markup":      markup,
	}
	return c.call(ctx, c.httpClient, "editMessageReplyMarkup", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press with a short notice.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	}
	return c.call(ctx, c.httpClient, "answerCallbackQuery", payload, nil)
}

// SendMessageParams are the optional pieces of a text message.
type SendMessageParams struct {
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}

// SendMessage sends a text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, params SendMessageParams) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if params.ParseMode != "" {
		payload["parse_mode"] = params.ParseMode
	}
	if params.ReplyMarkup != nil {
		payload["reply_markup"] = params.ReplyMarkup
	}
	return c.call(ctx, c.httpClient, "sendMessage", payload, nil)
}

// SetMyCommands registers the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	payload := map[string]any{"commands": commands}
	return c.call(ctx, c.httpClient, "setMyCommands", payload, nil)
}
