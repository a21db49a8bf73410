// Package localfs provides a connector that indexes text files under a
// local directory. It needs no authentication and serves as the reference
// connector implementation.
package localfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/siftlabs/sift/internal/core/domain"
	"github.com/siftlabs/sift/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Type is the source type this connector serves.
const Type = "localfs"

// textExtensions are the file types indexed by default.
var textExtensions = map[string]struct{}{
	".md":  {},
	".txt": {},
	".rst": {},
}

// maxFileSize caps content reads at 5 MB.
const maxFileSize = 5 << 20

// Connector walks a directory tree and exposes text files as documents.
// The cursor is the RFC3339 timestamp of the newest file seen; incremental
// passes list only files modified after it. File deletions are not
// detectable from modification times, so Removed is always empty.
type Connector struct {
	source domain.Source
	root   string
}

// Builder adapts New to the registry's builder signature.
func Builder(source domain.Source) (driven.Connector, error) {
	return New(source)
}

// New creates a localfs connector. The source config must carry the root
// directory under the "root" key.
func New(source domain.Source) (*Connector, error) {
	root := source.Config["root"]
	if root == "" {
		return nil, fmt.Errorf("%w: localfs source %q has no root directory", domain.ErrInvalidInput, source.ID)
	}
	return &Connector{source: source, root: root}, nil
}

// Type returns the connector type.
func (c *Connector) Type() string {
	return Type
}

// Source returns the source id this connector serves.
func (c *Connector) Source() string {
	return c.source.ID
}

// Authenticate verifies the root directory is readable. Local files need no
// credential material.
func (c *Connector) Authenticate(_ context.Context, _ domain.Credentials) error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrAuthenticationFailed, c.root)
	}
	return nil
}

// ListChanges walks the tree in one page. An unparsable cursor is treated
// as expired so the caller falls back to a full pass.
func (c *Connector) ListChanges(ctx context.Context, cursor string, full bool) (*domain.ChangePage, error) {
	var since time.Time
	if !full && cursor != "" {
		parsed, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: cursor %q", domain.ErrTokenExpired, cursor)
		}
		since = parsed
	}

	var items []domain.SourceItem
	newest := since

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != c.root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := textExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		if !full && !info.ModTime().After(since) {
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			rel = path
		}

		items = append(items, domain.SourceItem{
			ID:          rel,
			Title:       strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path:        filepath.Dir(rel),
			URL:         "file://" + path,
			ContentType: domain.ContentTypeDocument,
			ModifiedAt:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", c.root, err)
	}

	page := &domain.ChangePage{Items: items}
	if !newest.IsZero() {
		page.NewCursor = newest.Format(time.RFC3339Nano)
	}
	return page, nil
}

// FetchContent reads the file's text.
func (c *Connector) FetchContent(_ context.Context, item domain.SourceItem) (string, error) {
	path := filepath.Join(c.root, item.ID)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrContentUnavailable, item.ID)
		}
		return "", fmt.Errorf("stat %s: %w", item.ID, err)
	}
	if info.Size() > maxFileSize {
		return "", fmt.Errorf("%w: %s exceeds size limit", domain.ErrContentUnavailable, item.ID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", item.ID, err)
	}
	return string(data), nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
