package compile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"bte/config"
	"bte/dom"
	"bte/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Output.FileNameTransliterate = transliterate
	cfg.Output.NameTemplate = template

	return &state.LocalEnv{
		Log:    logger,
		Cfg:    cfg,
		NoDirs: noDirs,
	}
}

func setupTestResultForPath(t *testing.T) *Result {
	t.Helper()
	doc, err := dom.ParseString(`<html lang="de"><head><title> Monthly News </title></head><body><p>x</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return &Result{
		ID:  uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
		Doc: doc,
	}
}

func TestBuildOutputPath_SimpleCase_NoDirs(t *testing.T) {
	res := setupTestResultForPath(t)
	env := setupTestEnvForOutputPath(t, true, false, "")

	result := buildOutputPath(res, "mails/2024/news.htm", "/output", env)
	expected := filepath.Join("/output", "news.html")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_SimpleCase_WithDirs(t *testing.T) {
	res := setupTestResultForPath(t)
	env := setupTestEnvForOutputPath(t, false, false, "")

	result := buildOutputPath(res, "mails/2024/news.htm", "/output", env)
	expected := filepath.Join("/output", "mails", "2024", "news.html")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_Extension(t *testing.T) {
	res := setupTestResultForPath(t)
	env := setupTestEnvForOutputPath(t, true, false, "")
	env.Cfg.Output.Extension = ".email.html"

	result := buildOutputPath(res, "news.html", "/output", env)
	expected := filepath.Join("/output", "news.email.html")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_Transliterate(t *testing.T) {
	res := setupTestResultForPath(t)
	env := setupTestEnvForOutputPath(t, true, true, "")

	result := buildOutputPath(res, "Рассылка.html", "/output", env)
	expected := filepath.Join("/output", "rassylka.html")

	if result != expected {
		t.Errorf("buildOutputPath() = %q, want %q", result, expected)
	}
}

func TestBuildOutputPath_Template(t *testing.T) {
	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"title", `{{ .Title }}`, filepath.Join("/output", "Monthly News.html")},
		{"language and source", `{{ .Language }}/{{ .SourceFile }}`, filepath.Join("/output", "de", "news.html")},
		{"sprig functions", `{{ .Title | lower | replace " " "-" }}`, filepath.Join("/output", "monthly-news.html")},
		{"source dir", `{{ .SourceDir }}/{{ .SourceFile }}`, filepath.Join("/output", "mails", "news.html")},
		{"document id", `{{ .DocumentID | trunc 8 }}`, filepath.Join("/output", "01890a5d.html")},
		{"broken template falls back", `{{ .Title `, filepath.Join("/output", "news.html")},
		{"unknown field falls back", `{{ .Author }}`, filepath.Join("/output", "news.html")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := setupTestResultForPath(t)
			env := setupTestEnvForOutputPath(t, true, false, tt.template)

			result := buildOutputPath(res, "mails/news.htm", "/output", env)
			if result != tt.expected {
				t.Errorf("buildOutputPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestDetermineOutputDir(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")
	if got := determineOutputDir("mails/2024/news.html", "/output", env); got != "/output" {
		t.Errorf("determineOutputDir() = %q, want /output", got)
	}

	env = setupTestEnvForOutputPath(t, false, false, "")
	if got, want := determineOutputDir("mails/2024/news.html", "/output", env), filepath.Join("/output", "mails", "2024"); got != want {
		t.Errorf("determineOutputDir() = %q, want %q", got, want)
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"simple path", "campaign/news", []string{"campaign", "news"}},
		{"single segment", "news", []string{"news"}},
		{"with trailing slash", "campaign/news/", []string{"campaign", "news"}},
		{"three levels", "2024/campaign/news", []string{"2024", "campaign", "news"}},
		{"empty path", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndCleanPath(filepath.FromSlash(tt.path))
			if strings.Join(result, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("splitAndCleanPath() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanPathSegment(t *testing.T) {
	tests := []struct {
		name          string
		segment       string
		transliterate bool
		expected      string
	}{
		{"simple segment", "news", false, "news"},
		{"with spaces", "Monthly News", false, "Monthly News"},
		{"transliterate cyrillic", "Новости", true, "novosti"},
		{"leading dots", "..hidden", false, "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, true, tt.transliterate, "")

			result := cleanPathSegment(tt.segment, env)
			if result != tt.expected {
				t.Errorf("cleanPathSegment() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAssemblePathWithSubdirs_EmptyPath(t *testing.T) {
	env := setupTestEnvForOutputPath(t, true, false, "")

	result := assemblePathWithSubdirs("/output", "", env)
	if result != "/output" {
		t.Errorf("assemblePathWithSubdirs() with empty path = %q, want /output", result)
	}
}
