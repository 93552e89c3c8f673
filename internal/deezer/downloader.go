package deezer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	defaultGatewayURL = "https://www.deezer.com/ajax/gw-light.php"
	defaultMediaURL   = "https://media.deezer.com/v1/get_url"
	defaultStaleAfter = time.Hour

	coverURLFormat = "https://e-cdns-images.dzcdn.net/images/cover/%s/500x500.jpg"

	// Full downloads are capped; previews are ~400KB, full tracks a few MB.
	maxAudioBytes = 64 << 20
	maxCoverBytes = 4 << 20
)

// ErrNoAudio indicates the gateway produced no playable source for a track.
var ErrNoAudio = errors.New("no audio source for track")

// Song is a fully downloaded track ready for upload.
type Song struct {
	Content  []byte
	Title    string
	Artist   string
	CoverURL string
}

type session struct {
	apiToken     string
	licenseToken string
	renewedAt    time.Time
}

// DownloaderConfig configures a Downloader. Zero values fall back to the
// production endpoints and a one hour staleness threshold.
type DownloaderConfig struct {
	ARLCookie  string
	GatewayURL string
	MediaURL   string
	StaleAfter time.Duration
	HTTPClient *http.Client
}

// Downloader fetches full audio from Deezer's download gateway. It owns the
// authenticated session: callers never see tokens, they just call
// DownloadSong and the session is renewed behind the read/write lock when
// the staleness threshold has passed. Renewal fully completes before any
// fetch reads the session; fetches that already hold a valid snapshot are
// never blocked by it.
type Downloader struct {
	arl        string
	gatewayURL string
	mediaURL   string
	staleAfter time.Duration
	httpClient *http.Client

	mu   sync.RWMutex
	sess session
}

// NewDownloader creates a Downloader. The session is established lazily on
// first use.
func NewDownloader(cfg DownloaderConfig) *Downloader {
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = defaultGatewayURL
	}
	if cfg.MediaURL == "" {
		cfg.MediaURL = defaultMediaURL
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Downloader{
		arl:        cfg.ARLCookie,
		gatewayURL: cfg.GatewayURL,
		mediaURL:   cfg.MediaURL,
		staleAfter: cfg.StaleAfter,
		httpClient: cfg.HTTPClient,
	}
}

// DownloadSong fetches the full audio and metadata for a Deezer track id.
func (d *Downloader) DownloadSong(ctx context.Context, id uint64) (*Song, error) {
	sess, err := d.freshSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("renew session: %w", err)
	}

	meta, err := d.songData(ctx, sess, id)
	if err != nil {
		return nil, fmt.Errorf("track %d metadata: %w", id, err)
	}

	sourceURL, err := d.mediaSource(ctx, sess, meta.TrackToken)
	if err != nil {
		return nil, fmt.Errorf("track %d media url: %w", id, err)
	}

	content, err := d.fetch(ctx, sourceURL, maxAudioBytes)
	if err != nil {
		return nil, fmt.Errorf("track %d audio: %w", id, err)
	}

	return &Song{
		Content:  content,
		Title:    meta.Title,
		Artist:   meta.Artist,
		CoverURL: fmt.Sprintf(coverURLFormat, meta.Picture),
	}, nil
}

// FetchCover downloads album art referenced by a song's metadata.
func (d *Downloader) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	data, err := d.fetch(ctx, coverURL, maxCoverBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	return data, nil
}

// freshSession returns the current session, renewing it first when the
// staleness threshold has elapsed. The double check under the write lock
// keeps concurrent handlers from renewing twice.
func (d *Downloader) freshSession(ctx context.Context) (session, error) {
	d.mu.RLock()
	sess := d.sess
	d.mu.RUnlock()

	if !d.stale(sess) {
		return sess, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.stale(d.sess) {
		return d.sess, nil
	}

	sess, err := d.login(ctx)
	if err != nil {
		return session{}, err
	}
	d.sess = sess

	return sess, nil
}

func (d *Downloader) stale(s session) bool {
	return s.renewedAt.IsZero() || time.Since(s.renewedAt) > d.staleAfter
}

// login exchanges the ARL cookie for fresh API and license tokens.
func (d *Downloader) login(ctx context.Context) (session, error) {
	var result struct {
		CheckForm string `json:"checkForm"`
		User      struct {
			Options struct {
				LicenseToken string `json:"license_token"`
			} `json:"OPTIONS"`
		} `json:"USER"`
	}
	if err := d.gateway(ctx, "deezer.getUserData", "", nil, &result); err != nil {
		return session{}, err
	}
	if result.CheckForm == "" || result.User.Options.LicenseToken == "" {
		return session{}, errors.New("gateway returned no session tokens; ARL cookie may be expired")
	}

	return session{
		apiToken:     result.CheckForm,
		licenseToken: result.User.Options.LicenseToken,
		renewedAt:    time.Now(),
	}, nil
}

type songMeta struct {
	Title      string
	Artist     string
	Picture    string
	TrackToken string
}

func (d *Downloader) songData(ctx context.Context, sess session, id uint64) (songMeta, error) {
	var result struct {
		Title      string `json:"SNG_TITLE"`
		Artist     string `json:"ART_NAME"`
		Picture    string `json:"ALB_PICTURE"`
		TrackToken string `json:"TRACK_TOKEN"`
	}
	if err := d.gateway(ctx, "song.getData", sess.apiToken, map[string]any{"sng_id": id}, &result); err != nil {
		return songMeta{}, err
	}
	if result.TrackToken == "" {
		return songMeta{}, ErrNoAudio
	}

	return songMeta{
		Title:      result.Title,
		Artist:     result.Artist,
		Picture:    result.Picture,
		TrackToken: result.TrackToken,
	}, nil
}

// gateway performs one gw-light call, carrying the ARL cookie and decoding
// the {error, results} envelope.
func (d *Downloader) gateway(ctx context.Context, method, apiToken string, params any, result any) error {
	var body io.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode %s params: %w", method, err)
		}
		body = bytes.NewReader(encoded)
	}

	endpoint := fmt.Sprintf("%s?method=%s&input=3&api_version=1.0&api_token=%s", d.gatewayURL, method, apiToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "arl", Value: d.arl})

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s request: unexpected status %d", method, resp.StatusCode)
	}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	if len(envelope.Error) > 0 && string(envelope.Error) != "[]" && string(envelope.Error) != "{}" {
		return fmt.Errorf("%s gateway error: %s", method, envelope.Error)
	}
	if err := json.Unmarshal(envelope.Results, result); err != nil {
		return fmt.Errorf("parse %s results: %w", method, err)
	}

	return nil
}

func (d *Downloader) mediaSource(ctx context.Context, sess session, trackToken string) (string, error) {
	payload := map[string]any{
		"license_token": sess.licenseToken,
		"media": []map[string]any{{
			"type":    "FULL",
			"formats": []map[string]string{{"cipher": "NONE", "format": "MP3_128"}},
		}},
		"track_tokens": []string{trackToken},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode media request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.mediaURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build media request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("media request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media request: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Data []struct {
			Media []struct {
				Sources []struct {
					URL string `json:"url"`
				} `json:"sources"`
			} `json:"media"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse media response: %w", err)
	}

	for _, data := range result.Data {
		for _, media := range data.Media {
			for _, source := range media.Sources {
				if source.URL != "" {
					return source.URL, nil
				}
			}
		}
	}

	return "", ErrNoAudio
}

func (d *Downloader) fetch(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return data, nil
}
