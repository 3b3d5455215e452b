package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"renewme/internal/core"
)

// MaxImportBytes bounds an uploaded blob.
const MaxImportBytes = 4 << 20

var ErrEmptyImport = errors.New("import contains no subscriptions")

// WriteJSON writes subs as an indented JSON array, the same shape the app
// keeps in storage.
func WriteJSON(w io.Writer, subs []core.Subscription) error {
	if subs == nil {
		subs = []core.Subscription{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(subs); err != nil {
		return fmt.Errorf("encode subscriptions: %w", err)
	}
	return nil
}

// ReadJSON decodes a blob written by WriteJSON. Validation of the records
// is left to the command that stores them.
func ReadJSON(r io.Reader) ([]core.Subscription, error) {
	var subs []core.Subscription
	if err := json.NewDecoder(io.LimitReader(r, MaxImportBytes)).Decode(&subs); err != nil {
		return nil, fmt.Errorf("decode subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrEmptyImport
	}
	return subs, nil
}
