package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Source != SourceDir {
		t.Errorf("corpus source = %q, want %q", cfg.Corpus.Source, SourceDir)
	}
	if cfg.Indexer.StemLanguage != "spanish" {
		t.Errorf("stem language = %q", cfg.Indexer.StemLanguage)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("default limit = %d", cfg.Search.DefaultLimit)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
corpus:
  dir: /data/news
  workers: 2
indexer:
  positional: true
  permuterm: true
search:
  queryTimeout: 250ms
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Dir != "/data/news" || cfg.Corpus.Workers != 2 {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if !cfg.Indexer.Positional || !cfg.Indexer.Permuterm || cfg.Indexer.Stemming {
		t.Errorf("indexer = %+v", cfg.Indexer)
	}
	if cfg.Search.QueryTimeout != 250*time.Millisecond {
		t.Errorf("query timeout = %v", cfg.Search.QueryTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NS_INDEXER_STEMMING", "true")
	t.Setenv("NS_CORPUS_DIR", "/tmp/corpus")
	t.Setenv("NS_KAFKA_BROKERS", "k1:9092,k2:9092")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Indexer.Stemming {
		t.Error("expected stemming enabled from env")
	}
	if cfg.Corpus.Dir != "/tmp/corpus" {
		t.Errorf("corpus dir = %q", cfg.Corpus.Dir)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Corpus.Source = "s3" }},
		{"empty dir", func(c *Config) { c.Corpus.Dir = "" }},
		{"postgres without table", func(c *Config) { c.Corpus.Source = SourcePostgres; c.Corpus.Table = "" }},
		{"stemming without language", func(c *Config) { c.Indexer.Stemming = true; c.Indexer.StemLanguage = "" }},
		{"limit above max", func(c *Config) { c.Search.DefaultLimit = 50; c.Search.MaxResults = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}
