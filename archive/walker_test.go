package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func makeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath, prefix string, include []string) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, prefix, include, func(archive string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"mail/welcome.html":  "<p>welcome</p>",
		"mail/receipt.htm":   "<p>receipt</p>",
		"mail/style.css":     ".a{}",
		"drafts/later.html":  "<p>later</p>",
		"index.html":         "<p>index</p>",
		"assets/logo.png":    "png",
		"mail/nested/x.html": "<p>x</p>",
	})

	html := []string{"**/*.html", "**/*.htm"}

	tests := []struct {
		name    string
		prefix  string
		include []string
		want    []string
	}{
		{"mail prefix", "mail/", html, []string{"mail/nested/x.html", "mail/receipt.htm", "mail/welcome.html"}},
		{"no prefix", "", html, []string{"drafts/later.html", "index.html", "mail/nested/x.html", "mail/receipt.htm", "mail/welcome.html"}},
		{"no patterns", "mail/", nil, []string{"mail/nested/x.html", "mail/receipt.htm", "mail/style.css", "mail/welcome.html"}},
		{"top level only", "", []string{"*.html"}, []string{"index.html"}},
		{"no match", "nonexistent/", html, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, zipPath, tt.prefix, tt.include)
			if !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("walkFn returns error", func(t *testing.T) {
		expectedErr := errors.New("test error")
		err := Walk(zipPath, "mail/", html, func(archive string, file *zip.File) error {
			return expectedErr
		})

		if err != expectedErr {
			t.Errorf("Walk() error = %v, want %v", err, expectedErr)
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		err := Walk(zipPath, "", []string{"[a-"}, func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for malformed pattern")
		}
	})
}

func TestWalk_NaturalOrder(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"issue10.html": "",
		"issue2.html":  "",
		"issue1.html":  "",
	})

	got := collect(t, zipPath, "", []string{"**/*.html"})
	want := []string{"issue1.html", "issue2.html", "issue10.html"}
	if !slices.Equal(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk("/nonexistent/file.zip", "", nil, func(archive string, file *zip.File) error {
			return nil
		})

		if err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")

		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}

		err := Walk(invalidZip, "", nil, func(archive string, file *zip.File) error {
			return nil
		})

		if err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := makeZip(t, map[string]string{"../evil.html": "x"})
		err := Walk(zipPath, "", nil, func(archive string, file *zip.File) error {
			t.Error("walkFn must not be called for unsafe entries")
			return nil
		})
		if err == nil {
			t.Error("Expected error for unsafe entry")
		}
	})
}

func TestWalk_WithDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}

	w := zip.NewWriter(zipFile)

	// Add directory entries (usually created by zip utilities)
	dirHeader := &zip.FileHeader{
		Name: "mydir/",
	}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	fw, err := w.Create("mydir/file.html")
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	fw.Write([]byte("content"))

	w.Close()
	zipFile.Close()

	// Walk should not call walkFn for directories
	visited := collect(t, zipPath, "mydir/", nil)
	if !slices.Equal(visited, []string{"mydir/file.html"}) {
		t.Errorf("visited %v, want file only, not directory", visited)
	}
}

func TestWalk_FileContent(t *testing.T) {
	content := []byte("<p>test content</p>")
	zipPath := makeZip(t, map[string]string{"test.html": string(content)})

	err := Walk(zipPath, "", nil, func(archive string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}

		if !bytes.Equal(buf.Bytes(), content) {
			t.Errorf("content = %s, want %s", buf.Bytes(), content)
		}

		return nil
	})

	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestIncluded(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     bool
	}{
		{"a.html", nil, true},
		{"a.html", []string{"**/*.html"}, true},
		{"dir/a.html", []string{"**/*.html"}, true},
		{"dir/a.txt", []string{"**/*.html"}, false},
		{"dir/a.htm", []string{"**/*.html", "**/*.htm"}, true},
		{"dir/a.html", []string{"*.html"}, false},
	}
	for _, tt := range tests {
		if got := Included(tt.name, tt.patterns); got != tt.want {
			t.Errorf("Included(%q, %v) = %v, want %v", tt.name, tt.patterns, got, tt.want)
		}
	}
}
