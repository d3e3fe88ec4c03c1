package bookmarklet

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/markletdev/marklet/internal/errors"
)

// Encode serializes a payload into a URL-fragment-safe share token:
// compact JSON encoded with the URL-safe base64 alphabet, padding
// stripped. The token survives URL fragments, query strings, and chat
// clients that mangle + and /.
func Encode(p SharePayload) string {
	data, err := json.Marshal(p)
	if err != nil {
		// a struct of plain strings always marshals
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a share token back into a payload. Tokens come from
// the outside world, so every failure mode returns an INVALID_TOKEN
// error; Decode never panics.
func Decode(token string) (*SharePayload, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.NewInvalidToken("empty token")
	}

	// Encode never emits padding, but tolerate padded variants.
	token = strings.TrimRight(token, "=")

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.NewInvalidToken("not valid base64")
	}
	if !utf8.Valid(raw) {
		return nil, errors.NewInvalidToken("payload is not valid UTF-8")
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.NewInvalidToken("payload is not a JSON object")
	}

	var p SharePayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, errors.NewInvalidToken("payload is not valid JSON")
	}
	return &p, nil
}

// ShareLink builds a link carrying the token in the URL fragment,
// keeping it out of request paths and server logs.
func ShareLink(baseURL, token string) string {
	return baseURL + "#" + token
}

// ExtractToken returns the share token carried by s, which may be a
// bare token or a full share link with the token in the fragment.
func ExtractToken(s string) string {
	s = strings.TrimSpace(s)
	if _, frag, ok := strings.Cut(s, "#"); ok {
		return frag
	}
	return s
}
