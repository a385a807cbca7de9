package mapper

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"basegraph.app/ticketsync/internal/event"
)

var (
	ErrMissingEventHeader  = errors.New("missing event header")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// EventMapper normalizes a provider's webhook into an envelope using GitHub's
// event vocabulary.
type EventMapper interface {
	Map(ctx context.Context, body map[string]any, headers map[string]string) (event.Envelope, error)
}

// header looks name up exactly, then in canonical form, then case-insensitively.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	if v, ok := headers[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
