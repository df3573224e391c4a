// Package media defines the media-source resolution contract. A
// resolver maps a logical media reference (a media-source URI or a
// library item) to a URL the audio device can fetch and play.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SourceScheme prefixes logical media references that need resolving.
const SourceScheme = "media-source://"

// ErrNotResolvable indicates the resolver has no playable URL for the
// given reference.
var ErrNotResolvable = errors.New("media: reference not resolvable")

// Resolver maps a logical media reference to a playable URL.
type Resolver interface {
	Resolve(ctx context.Context, mediaID string) (string, error)
}

// IsSourceID reports whether a media reference is a logical source
// reference rather than a plain URL.
func IsSourceID(mediaID string) bool {
	return strings.HasPrefix(mediaID, SourceScheme)
}

// Passthrough returns plain URLs unchanged and rejects logical source
// references. It is the default resolver when no media library is
// configured.
type Passthrough struct{}

// Resolve implements Resolver.
func (Passthrough) Resolve(_ context.Context, mediaID string) (string, error) {
	if IsSourceID(mediaID) {
		return "", fmt.Errorf("%w: %s", ErrNotResolvable, mediaID)
	}
	return mediaID, nil
}

// Static resolves references from a fixed table. Plain URLs pass
// through untouched.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, mediaID string) (string, error) {
	if url, ok := s[mediaID]; ok {
		return url, nil
	}
	if IsSourceID(mediaID) {
		return "", fmt.Errorf("%w: %s", ErrNotResolvable, mediaID)
	}
	return mediaID, nil
}
