package mapview

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// ProtocolHandler resolves a URL using a custom scheme into a URL the tile
// engine can fetch.
type ProtocolHandler func(ctx context.Context, raw string) (string, error)

const SchemePMTiles = "pmtiles"

// PMTiles resolves "pmtiles://http://host/archive.pmtiles" to the archive
// URL. Range requests against the archive are the tile engine's business.
func PMTiles(_ context.Context, raw string) (string, error) {
	rest, ok := strings.CutPrefix(raw, SchemePMTiles+"://")
	if !ok {
		return "", fmt.Errorf("pmtiles: %q is not a pmtiles url", raw)
	}
	u, err := url.Parse(rest)
	if err != nil {
		return "", fmt.Errorf("pmtiles: %w", err)
	}
	if u.Host == "" && u.Scheme != "file" {
		return "", fmt.Errorf("pmtiles: archive url %q has no host", rest)
	}
	return u.String(), nil
}

// splitScheme returns the scheme of raw ("" when there is none).
func splitScheme(raw string) string {
	i := strings.Index(raw, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(raw[:i])
}
