// Package codec turns recorded values into self-contained byte payloads and
// back. Decoding a payload always yields a structurally independent copy of
// the original value, which is how the history engine deep-copies state.
//
// Payload frame:
//
//	byte 0     format (FormatRaw or FormatZstd)
//	byte 1..   JSON body, zstd-compressed when format is FormatZstd
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Payload formats.
const (
	FormatRaw  byte = 0
	FormatZstd byte = 1
)

// ErrEmptyPayload is returned when decoding a zero-length payload.
var ErrEmptyPayload = errors.New("empty payload")

var (
	coderOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	coderErr  error
)

// coders returns the shared zstd coders. EncodeAll and DecodeAll are safe
// for concurrent use.
func coders() (*zstd.Encoder, *zstd.Decoder, error) {
	coderOnce.Do(func() {
		encoder, coderErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if coderErr != nil {
			coderErr = fmt.Errorf("zstd writer: %w", coderErr)
			return
		}
		decoder, coderErr = zstd.NewReader(nil)
		if coderErr != nil {
			coderErr = fmt.Errorf("zstd reader: %w", coderErr)
		}
	})
	return encoder, decoder, coderErr
}

// Encode serializes v into a framed payload. Values that cannot be
// serialized, such as cyclic structures, channels or functions, return an
// error and no payload.
func Encode(v any, compress bool) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	if !compress {
		out := make([]byte, 0, len(body)+1)
		out = append(out, FormatRaw)
		return append(out, body...), nil
	}

	enc, _, err := coders()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, len(body)/2+1)
	out[0] = FormatZstd
	return enc.EncodeAll(body, out), nil
}

// Decode parses a framed payload into v, which must be a non-nil pointer.
func Decode(payload []byte, v any) error {
	body, err := Body(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Body returns the uncompressed JSON body of a framed payload.
func Body(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	switch payload[0] {
	case FormatRaw:
		return payload[1:], nil
	case FormatZstd:
		_, dec, err := coders()
		if err != nil {
			return nil, err
		}
		body, err := dec.DecodeAll(payload[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("read zstd payload: %w", err)
		}
		return body, nil
	default:
		return nil, fmt.Errorf("unknown payload format %d", payload[0])
	}
}

// Clone deep-copies v through an encode/decode round trip.
func Clone[T any](v T) (T, error) {
	var out T
	payload, err := Encode(v, false)
	if err != nil {
		return out, err
	}
	err = Decode(payload, &out)
	return out, err
}
