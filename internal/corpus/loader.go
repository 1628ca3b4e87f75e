package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

// LoadFile decodes a JSON array of article objects. Every object must carry
// all RequiredFields.
func LoadFile(path string) ([]Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %v", path, apperrors.ErrUnreadableSource, err)
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %v", path, apperrors.ErrUnreadableSource, err)
	}
	articles := make([]Article, len(records))
	for i, rec := range records {
		a, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s record %d: %w", path, i, err)
		}
		articles[i] = a
	}
	return articles, nil
}

func decodeRecord(rec map[string]json.RawMessage) (Article, error) {
	values := make(map[string]string, len(RequiredFields))
	for _, name := range RequiredFields {
		raw, ok := rec[name]
		if !ok {
			return Article{}, fmt.Errorf("field %q: %w", name, apperrors.ErrMissingField)
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return Article{}, fmt.Errorf("field %q is not a string: %w", name, apperrors.ErrUnreadableSource)
		}
		values[name] = v
	}
	return Article{
		Title:    values[FieldTitle],
		Date:     values[FieldDate],
		Keywords: values[FieldKeywords],
		Body:     values[FieldArticle],
		Summary:  values[FieldSummary],
	}, nil
}

// Discover walks root recursively and returns every .json file, sorted
// lexicographically so document ids are reproducible.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w: %v", root, apperrors.ErrUnreadableSource, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// DirSource reads every collection file under Root. Files are decoded in
// parallel by up to Workers goroutines; batches keep the sorted file order.
type DirSource struct {
	Root    string
	Workers int
}

func (s DirSource) Batches(ctx context.Context) ([]Batch, error) {
	paths, err := Discover(s.Root)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, paths, s.Workers)
}

// LoadFiles decodes paths concurrently and returns one batch per path in the
// order given. The first failing file aborts the load.
func LoadFiles(ctx context.Context, paths []string, workers int) ([]Batch, error) {
	if workers <= 0 {
		workers = 1
	}
	logger := slog.Default().With("component", "corpus-loader")
	batches := make([]Batch, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			articles, err := LoadFile(path)
			if err != nil {
				return err
			}
			batches[i] = Batch{Location: path, Articles: articles}
			logger.Debug("collection decoded", "path", path, "articles", len(articles))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}
