package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const collection = `[
  {"title": "Perros", "date": "2015-03-01", "keywords": "animales", "article": "el perro corre por la casa", "summary": "perro"},
  {"title": "Gatos", "date": "2015-03-02", "keywords": "animales", "article": "el gato duerme", "summary": "gato"},
  {"title": "Casas", "date": "2015-03-03", "keywords": "vivienda", "article": "las casas y la cama", "summary": "casas"}
]`

func corpusDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "2015-03.json"), []byte(collection), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runSar(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr strings.Builder
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCountMode(t *testing.T) {
	dir := corpusDir(t)
	code, out, errOut := runSar(t, "", "-dir", dir, "-C", "-q", "el and not gato")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "el and not gato\t1\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestShowMode(t *testing.T) {
	dir := corpusDir(t)
	code, out, errOut := runSar(t, "", "-dir", dir, "-multifield", "-q", "keywords:animales")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"Retrieved news: 2", "Title: Perros", "Title: Gatos"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout lacks %q:\n%s", want, out)
		}
	}
}

func TestVerifyMode(t *testing.T) {
	dir := corpusDir(t)
	tests := filepath.Join(t.TempDir(), "expected.tsv")
	content := "# wildcard and phrase queries\nca*\t2\n\"el perro\"\t1\nperro or gato\t2\n"
	if err := os.WriteFile(tests, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runSar(t, "", "-dir", dir, "-positional", "-permuterm", "-T", tests)
	if code != 0 {
		t.Fatalf("exit %d: %s\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "all 3 queries passed") {
		t.Errorf("stdout = %s", out)
	}

	if err := os.WriteFile(tests, []byte("perro\t5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, _ = runSar(t, "", "-dir", dir, "-T", tests)
	if code != 1 || !strings.Contains(out, "FAIL\tperro\tgot 1, want 5") {
		t.Errorf("exit %d, stdout = %s", code, out)
	}
}

func TestInteractiveReportsErrorsAndContinues(t *testing.T) {
	dir := corpusDir(t)
	code, out, errOut := runSar(t, "perro and\ngato\n\n", "-dir", dir, "-C")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(errOut, "query syntax error") {
		t.Errorf("stderr = %s", errOut)
	}
	if out != "gato\t1\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestStatsOnly(t *testing.T) {
	dir := corpusDir(t)
	code, out, _ := runSar(t, "", "-dir", dir, "-stats")
	if code != 0 || !strings.Contains(out, "Indexed news:") || !strings.Contains(out, "article") {
		t.Errorf("exit %d, stdout = %s", code, out)
	}
}

func TestMissingDirectory(t *testing.T) {
	code, _, errOut := runSar(t, "", "-dir", filepath.Join(t.TempDir(), "nope"), "-q", "perro")
	if code != 1 || errOut == "" {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}
