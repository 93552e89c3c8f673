// Package encoding serializes the small tagged values carried through
// Telegram's inline-result ids and callback-data payloads. Both fields have
// tight length limits, so values are packed as a single tag byte followed by
// a uvarint and wrapped in padding-free URL-safe base64. Tokens are
// self-contained: everything needed to resume a selection or a button press
// survives a process restart.
package encoding

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedToken is returned by the decoders for any input not produced
// by the corresponding encoder. Decoding runs on attacker-reachable input,
// so every byte sequence maps to either a value or this error.
var ErrMalformedToken = errors.New("malformed token")

// Tag bytes are distinct across both token families so a token of one kind
// can never decode as the other.
const (
	tagDownload byte = 0x01
	tagCached   byte = 0x02
	tagNothing  byte = 0x11
	tagLike     byte = 0x12
)

var alphabet = base64.RawURLEncoding

// QueryToken is carried in an inline result id and tells the chosen-result
// handler whether the selected track still needs to be downloaded.
type QueryToken interface {
	queryToken()
}

// DownloadToken marks a track with no cache row yet; selection triggers a
// fetch of the referenced Deezer track.
type DownloadToken struct {
	DeezerID uint64
}

// CachedToken marks a track that is already durable; selection only logs
// history against the referenced songs row.
type CachedToken struct {
	SongID int32
}

func (DownloadToken) queryToken() {}
func (CachedToken) queryToken()   {}

// CallbackToken is carried in a button payload and describes the UI action
// the press should perform.
type CallbackToken interface {
	callbackToken()
}

// NothingToken is attached to placeholder buttons; pressing one is
// acknowledged without any state change.
type NothingToken struct{}

// LikeToken toggles the presser's like on the referenced songs row.
type LikeToken struct {
	SongID int32
}

func (NothingToken) callbackToken() {}
func (LikeToken) callbackToken()    {}

// EncodeQuery renders a query token as an opaque string.
func EncodeQuery(t QueryToken) string {
	switch t := t.(type) {
	case DownloadToken:
		return pack(tagDownload, t.DeezerID)
	case CachedToken:
		return pack(tagCached, uint64(t.SongID))
	default:
		// The interface is sealed; this is unreachable.
		panic(fmt.Sprintf("encoding: unknown query token %T", t))
	}
}

// DecodeQuery parses a string produced by EncodeQuery. It never panics on
// malformed input.
func DecodeQuery(s string) (QueryToken, error) {
	tag, value, err := unpack(s)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagDownload:
		return DownloadToken{DeezerID: value}, nil
	case tagCached:
		id, err := asSongID(value)
		if err != nil {
			return nil, err
		}
		return CachedToken{SongID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown query tag 0x%02x", ErrMalformedToken, tag)
	}
}

// EncodeCallback renders a callback token as an opaque string.
func EncodeCallback(t CallbackToken) string {
	switch t := t.(type) {
	case NothingToken:
		return alphabet.EncodeToString([]byte{tagNothing})
	case LikeToken:
		return pack(tagLike, uint64(t.SongID))
	default:
		panic(fmt.Sprintf("encoding: unknown callback token %T", t))
	}
}

// DecodeCallback parses a string produced by EncodeCallback.
func DecodeCallback(s string) (CallbackToken, error) {
	raw, err := alphabet.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(raw) == 1 && raw[0] == tagNothing {
		return NothingToken{}, nil
	}
	tag, value, err := unpackRaw(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagLike:
		id, err := asSongID(value)
		if err != nil {
			return nil, err
		}
		return LikeToken{SongID: id}, nil
	default:
		return nil, fmt.Errorf("%w: unknown callback tag 0x%02x", ErrMalformedToken, tag)
	}
}

func pack(tag byte, value uint64) string {
	buf := make([]byte, 0, 1+binary.MaxVarintLen64)
	buf = append(buf, tag)
	buf = binary.AppendUvarint(buf, value)
	return alphabet.EncodeToString(buf)
}

func unpack(s string) (byte, uint64, error) {
	raw, err := alphabet.DecodeString(s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return unpackRaw(raw)
}

func unpackRaw(raw []byte) (byte, uint64, error) {
	if len(raw) < 2 {
		return 0, 0, fmt.Errorf("%w: truncated payload", ErrMalformedToken)
	}
	value, n := binary.Uvarint(raw[1:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: invalid varint", ErrMalformedToken)
	}
	if 1+n != len(raw) {
		return 0, 0, fmt.Errorf("%w: trailing bytes", ErrMalformedToken)
	}
	return raw[0], value, nil
}

func asSongID(value uint64) (int32, error) {
	if value > math.MaxInt32 {
		return 0, fmt.Errorf("%w: song id out of range", ErrMalformedToken)
	}
	return int32(value), nil
}
