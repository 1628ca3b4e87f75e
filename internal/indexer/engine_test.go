package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sarnews/newsearch/internal/corpus"
	"github.com/sarnews/newsearch/pkg/config"
	apperrors "github.com/sarnews/newsearch/pkg/errors"
	"github.com/sarnews/newsearch/pkg/metrics"
)

func writeCollection(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const first = `[
  {"title": "Perros", "date": "2015-03-01", "keywords": "animales", "article": "el perro corre", "summary": "perro"},
  {"title": "Gatos", "date": "2015-03-02", "keywords": "animales", "article": "el gato duerme", "summary": "gato"}
]`

const second = `[
  {"title": "Casas", "date": "2015-04-01", "keywords": "vivienda", "article": "las casas y la casa", "summary": "casas"}
]`

type staticSource []corpus.Batch

func (s staticSource) Batches(context.Context) ([]corpus.Batch, error) { return s, nil }

func TestBuildFromDir(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "2015-03.json", first)
	writeCollection(t, dir, "2015-04.json", second)

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	cfg := config.IndexerConfig{MultiField: true, Positional: true, Stemming: true, Permuterm: true, StemLanguage: "spanish"}
	store, err := NewEngine(cfg, m).BuildFromDir(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("BuildFromDir: %v", err)
	}

	st := store.Stats()
	if st.Documents != 2 || st.News != 3 {
		t.Fatalf("Stats = %+v", st)
	}
	if doc, _ := store.Document(1); filepath.Base(doc.Path) != "2015-04.json" {
		t.Errorf("document 1 = %s, want 2015-04.json", doc.Path)
	}
	if item, _ := store.News(2); item.DocID != 1 || item.Offset != 0 || item.Title != "Casas" {
		t.Errorf("news 2 = %+v", item)
	}

	article := store.Field("article")
	if got := article.Postings("el"); len(got) != 2 {
		t.Errorf("postings(el) = %v", got)
	}
	stem := store.Stemmer().Stem("casas")
	if terms := article.StemTerms(stem); len(terms) != 2 {
		t.Errorf("StemTerms(%q) = %v, want casa and casas", stem, terms)
	}

	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 2 {
		t.Errorf("docs_indexed_total = %v", got)
	}
	if got := testutil.ToFloat64(m.NewsIndexedTotal); got != 3 {
		t.Errorf("news_indexed_total = %v", got)
	}
	if got := testutil.ToFloat64(m.VocabularySize.WithLabelValues("date")); got != 3 {
		t.Errorf("vocabulary{date} = %v", got)
	}
}

func TestBuildPropagatesLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "bad.json", `[{"title": "x"}]`)
	_, err := NewEngine(config.IndexerConfig{}, nil).BuildFromDir(context.Background(), dir, 1)
	if !errors.Is(err, apperrors.ErrMissingField) {
		t.Fatalf("BuildFromDir() = %v, want ErrMissingField", err)
	}
}

func TestBuildRejectsUnknownStemLanguage(t *testing.T) {
	cfg := config.IndexerConfig{Stemming: true, StemLanguage: "klingon"}
	_, err := NewEngine(cfg, nil).Build(context.Background(), staticSource{})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("Build() = %v, want ErrInvalidInput", err)
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := staticSource{{Location: "a.json", Articles: []corpus.Article{{Body: "x"}}}}
	_, err := NewEngine(config.IndexerConfig{}, nil).Build(ctx, src)
	if !errors.Is(err, apperrors.ErrTimeout) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Build() = %v, want ErrTimeout wrapping context.Canceled", err)
	}
}

func TestBuildEmptySource(t *testing.T) {
	store, err := NewEngine(config.IndexerConfig{Permuterm: true}, nil).Build(context.Background(), staticSource{})
	if err != nil {
		t.Fatal(err)
	}
	if store.NumNews() != 0 || len(store.Universe()) != 0 {
		t.Errorf("empty build has %d news", store.NumNews())
	}
}
