package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"conti/internal/markup"
)

// DocumentFetcher fetches a rendered page over HTTP.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, ref string) ([]byte, error)
}

// IsRemote reports whether source names a page to fetch rather than a file.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// LoadDocument parses the page named by source: a file path, or an http(s)
// URL fetched through fetcher.
func LoadDocument(ctx context.Context, fetcher DocumentFetcher, source string) (*markup.Document, error) {
	var data []byte
	var err error
	if IsRemote(source) {
		if fetcher == nil {
			return nil, fmt.Errorf("load %s: no HTTP client", source)
		}
		data, err = fetcher.FetchDocument(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	doc, err := markup.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return doc, nil
}
