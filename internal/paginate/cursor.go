// Package paginate implements cursor pagination over grouped, filtered
// posting streams.
package paginate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Cursor is the opaque resume token handed back to clients. Raw is the
// underlying store's own page token, resuming the posting stream after the
// last consumed row. Carry holds postings that were fetched but deferred
// because their group straddled the page boundary. Done means the stream
// was exhausted.
type Cursor struct {
	Raw   string      `json:"raw,omitempty"`
	Carry []uuid.UUID `json:"carry,omitempty"`
	Done  bool        `json:"done,omitempty"`
}

// Encode serializes the cursor to an opaque URL-safe token.
func (c *Cursor) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses a client-supplied token. An empty token is the start
// of the stream.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return &Cursor{}, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	return &c, nil
}
