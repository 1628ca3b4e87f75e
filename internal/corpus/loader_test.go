package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/sarnews/newsearch/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const twoArticles = `[
  {"title": "Perros", "date": "2015-03-01", "keywords": "animales", "article": "el perro corre", "summary": "perro"},
  {"title": "Gatos", "date": "2015-03-02", "keywords": "animales", "article": "el gato duerme", "summary": "gato", "url": "ignored"}
]`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2015-03.json")
	writeFile(t, path, twoArticles)

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := []Article{
		{Title: "Perros", Date: "2015-03-01", Keywords: "animales", Body: "el perro corre", Summary: "perro"},
		{Title: "Gatos", Date: "2015-03-02", Keywords: "animales", Body: "el gato duerme", Summary: "gato"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadFile mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"missing article", `[{"title": "t", "date": "d", "keywords": "k", "summary": "s"}]`, apperrors.ErrMissingField},
		{"not an array", `{"title": "t"}`, apperrors.ErrUnreadableSource},
		{"non string field", `[{"title": 1, "date": "d", "keywords": "k", "article": "a", "summary": "s"}]`, apperrors.ErrUnreadableSource},
		{"truncated", `[{"title": "t"`, apperrors.ErrUnreadableSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			writeFile(t, path, tt.content)
			if _, err := LoadFile(path); !errors.Is(err, tt.want) {
				t.Fatalf("LoadFile() = %v, want %v", err, tt.want)
			}
		})
	}
	if _, err := LoadFile(filepath.Join(dir, "absent.json")); !errors.Is(err, apperrors.ErrUnreadableSource) {
		t.Fatalf("LoadFile(absent) = %v, want ErrUnreadableSource", err)
	}
}

func TestDiscoverSortsAndFilters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "02.json"), "[]")
	writeFile(t, filepath.Join(root, "a", "10.json"), "[]")
	writeFile(t, filepath.Join(root, "a", "01.json"), "[]")
	writeFile(t, filepath.Join(root, "notes.txt"), "x")

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "01.json"),
		filepath.Join(root, "a", "10.json"),
		filepath.Join(root, "b", "02.json"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discover mismatch (-want +got):\n%s", diff)
	}
}

func TestDirSourceKeepsOrderUnderParallelism(t *testing.T) {
	root := t.TempDir()
	names := []string{"01.json", "02.json", "03.json", "04.json", "05.json"}
	for _, name := range names {
		writeFile(t, filepath.Join(root, name),
			`[{"title": "`+name+`", "date": "d", "keywords": "k", "article": "a", "summary": "s"}]`)
	}
	batches, err := DirSource{Root: root, Workers: 4}.Batches(context.Background())
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	if len(batches) != len(names) {
		t.Fatalf("got %d batches, want %d", len(batches), len(names))
	}
	for i, b := range batches {
		if b.Articles[0].Title != names[i] {
			t.Errorf("batch %d title = %q, want %q", i, b.Articles[0].Title, names[i])
		}
	}
}

func TestDirSourceFailsOnBadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.json"), twoArticles)
	writeFile(t, filepath.Join(root, "bad.json"), `[{"title": "x"}]`)
	_, err := DirSource{Root: root, Workers: 2}.Batches(context.Background())
	if !errors.Is(err, apperrors.ErrMissingField) {
		t.Fatalf("Batches() = %v, want ErrMissingField", err)
	}
}

func TestArticleField(t *testing.T) {
	a := Article{Title: "t", Date: "d", Keywords: "k", Body: "b", Summary: "s"}
	for name, want := range map[string]string{"title": "t", "date": "d", "keywords": "k", "article": "b", "summary": "s"} {
		if got, ok := a.Field(name); !ok || got != want {
			t.Errorf("Field(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := a.Field("url"); ok {
		t.Error("Field(url) should not exist")
	}
}
