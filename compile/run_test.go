package compile

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	writeFile(t, path, buf.String())
}

func names(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, filepath.ToSlash(s.Name))
	}
	return out
}

func TestCollect_Directory(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "mail10.html"), `<p>10</p>`)
	writeFile(t, filepath.Join(dir, "mail2.html"), `<p>2</p>`)
	writeFile(t, filepath.Join(dir, "sub", "welcome.htm"), "\ufeff  <div>w</div>")
	writeFile(t, filepath.Join(dir, "notes.txt"), `<p>not included</p>`)
	writeFile(t, filepath.Join(dir, "fake.html"), `plain text`)
	writeZip(t, filepath.Join(dir, "pack", "more.zip"), map[string]string{
		"z/one.html":  `<p>one</p>`,
		"z/image.png": "\x89PNG\r\n\x1a\n",
	})

	sources, err := collect(context.Background(), dir, env, env.Log)
	if err != nil {
		t.Fatalf("collect() error = %v", err)
	}

	got := strings.Join(names(sources), ",")
	want := "mail2.html,mail10.html,pack/z/one.html,sub/welcome.htm"
	if got != want {
		t.Errorf("collect() = %s, want %s", got, want)
	}
}

func TestCollect_ArchivePath(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()
	arc := filepath.Join(dir, "mails.zip")
	writeZip(t, arc, map[string]string{
		"a/one.html": `<p>one</p>`,
		"b/two.html": `<p>two</p>`,
	})

	sources, err := collect(context.Background(), filepath.Join(arc, "b"), env, env.Log)
	if err != nil {
		t.Fatalf("collect() error = %v", err)
	}
	if got := names(sources); len(got) != 1 || got[0] != "b/two.html" {
		t.Errorf("collect() = %v", got)
	}
}

func TestCollect_Errors(t *testing.T) {
	env := testEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.txt"), "just text")

	if _, err := collect(context.Background(), filepath.Join(dir, "missing.html"), env, env.Log); err == nil {
		t.Error("expected error for missing source")
	}
	if _, err := collect(context.Background(), filepath.Join(dir, "readme.txt"), env, env.Log); err == nil {
		t.Error("expected error for non HTML source")
	}
}

func TestProcess_WritesResults(t *testing.T) {
	env := testEnv(t)
	e := testEngine(t, env)
	src, dst := t.TempDir(), t.TempDir()

	writeFile(t, filepath.Join(src, "a", "one.html"), `<div class="container"><p>one</p></div>`)
	writeFile(t, filepath.Join(src, "two.html"), `<p>two</p>`)

	if err := process(context.Background(), e, src, dst, env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	for _, name := range []string{filepath.Join("a", "one.html"), "two.html"} {
		data, err := os.ReadFile(filepath.Join(dst, name))
		if err != nil {
			t.Fatalf("result %s: %v", name, err)
		}
		if !strings.HasPrefix(string(data), "<!DOCTYPE html PUBLIC") {
			t.Errorf("result %s has no doctype", name)
		}
	}

	// second run refuses to overwrite
	if err := process(context.Background(), e, src, dst, env, env.Log); err == nil {
		t.Error("expected error when results exist")
	}
	env.Overwrite = true
	if err := process(context.Background(), e, src, dst, env, env.Log); err != nil {
		t.Errorf("process() with overwrite error = %v", err)
	}
}

func TestProcess_NoDirs(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	e := testEngine(t, env)
	src, dst := t.TempDir(), t.TempDir()

	writeFile(t, filepath.Join(src, "deep", "er", "one.html"), `<p>one</p>`)
	if err := process(context.Background(), e, src, dst, env, env.Log); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "one.html")); err != nil {
		t.Errorf("result not flattened: %v", err)
	}
}

func TestCompileStream(t *testing.T) {
	env := testEnv(t)
	e := testEngine(t, env)

	var out bytes.Buffer
	if err := compileStream(context.Background(), e, strings.NewReader(`<hr>`), &out, env); err != nil {
		t.Fatalf("compileStream() error = %v", err)
	}
	if !strings.Contains(out.String(), `class="hr"`) {
		t.Errorf("unexpected output: %.300s", out.String())
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{"<!DOCTYPE html><html></html>", true},
		{"\ufeff\n  <p>x</p>", true},
		{"<!-- comment -->", true},
		{"text <p>", false},
		{"", false},
		{"\x89PNG\r\n\x1a\n", false},
		{"PK\x03\x04", false},
	}
	for _, tt := range tests {
		if got := looksLikeHTML([]byte(tt.data)); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "test.txt")
	writeFile(t, plain, "not a zip")
	fake := filepath.Join(dir, "fake.zip")
	writeFile(t, fake, "not a real zip file")
	valid := filepath.Join(dir, "real.zip")
	writeZip(t, valid, map[string]string{"a.html": "<p>a</p>"})

	for path, want := range map[string]bool{plain: false, fake: false, valid: true} {
		got, err := isArchiveFile(path)
		if err != nil {
			t.Errorf("isArchiveFile(%s) error = %v", path, err)
		}
		if got != want {
			t.Errorf("isArchiveFile(%s) = %v, want %v", path, got, want)
		}
	}

	if _, err := isArchiveFile(filepath.Join(dir, "missing.zip")); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join("tmp", "src")
	tests := []struct {
		path string
		want bool
	}{
		{root, true},
		{filepath.Join(root, "a", "b.html"), true},
		{filepath.Join("tmp", "srcx"), false},
		{filepath.Join("tmp", "out"), false},
		{"tmp", false},
	}
	for _, tt := range tests {
		if got := within(tt.path, root); got != tt.want {
			t.Errorf("within(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
