// Package codec implements the reversible text transform applied to every
// catalog blob. It hides payloads from casual inspection only; it is not
// encryption and provides no confidentiality or integrity.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// VersionPrefix marks tokens produced by this version of the transform.
const VersionPrefix = "wg1."

// ErrUnknownVersion is returned when a token does not carry VersionPrefix.
var ErrUnknownVersion = errors.New("codec: unknown version prefix")

// substitution lists the single-character swaps applied to the Base64
// text, as "from" → "to" pairs. Targets are a permutation of the sources so
// the mapping is invertible.
var substitution = [][2]byte{
	{'A', 'q'}, {'q', 'A'},
	{'E', '7'}, {'7', 'E'},
	{'K', 'x'}, {'x', 'K'},
	{'R', '2'}, {'2', 'R'},
	{'b', 'V'}, {'V', 'b'},
	{'g', '+'}, {'+', 'g'},
	{'m', '/'}, {'/', 'm'},
	{'0', 'T'}, {'T', '0'},
}

var encodeTable, decodeTable [256]byte

func init() {
	for i := range encodeTable {
		encodeTable[i] = byte(i)
		decodeTable[i] = byte(i)
	}
	for _, p := range substitution {
		encodeTable[p[0]] = p[1]
		decodeTable[p[1]] = p[0]
	}
}

// Encode transforms text into a token: Base64 of the UTF-8 bytes, the
// character substitution, reversal, then the version prefix.
func Encode(text string) string {
	b64 := base64.StdEncoding.EncodeToString([]byte(text))
	n := len(b64)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = encodeTable[b64[i]]
	}
	return VersionPrefix + string(out)
}

// Decode reverses Encode. Tokens without the expected prefix fail with
// ErrUnknownVersion rather than being guessed at.
func Decode(token string) (string, error) {
	body, ok := strings.CutPrefix(token, VersionPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, prefixOf(token))
	}
	n := len(body)
	b64 := make([]byte, n)
	for i := 0; i < n; i++ {
		b64[i] = decodeTable[body[n-1-i]]
	}
	raw, err := base64.StdEncoding.DecodeString(string(b64))
	if err != nil {
		return "", fmt.Errorf("codec: base64: %w", err)
	}
	return string(raw), nil
}

// EncodeJSON marshals v and encodes the result.
func EncodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("codec: marshal: %w", err)
	}
	return Encode(string(data)), nil
}

// DecodeJSON decodes token and unmarshals the payload into v.
func DecodeJSON(token string, v any) error {
	text, err := Decode(token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("codec: unmarshal: %w", err)
	}
	return nil
}

func prefixOf(token string) string {
	if len(token) > len(VersionPrefix) {
		return token[:len(VersionPrefix)]
	}
	return token
}
