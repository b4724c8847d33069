package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "empty file uses defaults",
			content: "",
			check: func(t *testing.T, cfg Config) {
				def := DefaultConfig()
				if !slices.Equal(cfg.Format.Extensions, def.Format.Extensions) {
					t.Errorf("extensions = %v, want %v", cfg.Format.Extensions, def.Format.Extensions)
				}
				if !cfg.Format.StripComments || cfg.Format.OutputPrefix != "new_" {
					t.Errorf("unexpected format defaults %+v", cfg.Format)
				}
				if !slices.Equal(cfg.STM32.Dirs, []string{"Core/Src", "Core/Inc"}) {
					t.Errorf("unexpected dirs %v", cfg.STM32.Dirs)
				}
			},
		},
		{
			name: "overrides",
			content: `[format]
strip_comments = false
extensions = [".c"]
encoding = "windows-1252"
output_prefix = "fmt_"

[stm32]
workspace = "/opt/stm"
dirs = ["Core/Src"]
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Format.StripComments {
					t.Error("expected strip_comments = false")
				}
				if !cfg.Format.BraceBeforeComment {
					t.Error("expected brace_before_comment default to survive")
				}
				if !slices.Equal(cfg.Format.Extensions, []string{".c"}) {
					t.Errorf("extensions = %v", cfg.Format.Extensions)
				}
				if cfg.Format.Encoding != "windows-1252" || cfg.Format.OutputPrefix != "fmt_" {
					t.Errorf("unexpected format %+v", cfg.Format)
				}
				if cfg.STM32.Workspace != "/opt/stm" || !slices.Equal(cfg.STM32.Dirs, []string{"Core/Src"}) {
					t.Errorf("unexpected stm32 %+v", cfg.STM32)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeManifest(t, t.TempDir(), tt.content))
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[format]\nstrip_coments = true\n", "format.strip_coments"},
		{"syntax", "[format\n", "failed to parse TOML"},
		{"bad extension", "[format]\nextensions = [\"c\"]\n", "must start with '.'"},
		{"empty extensions", "[format]\nextensions = []\n", "must not be empty"},
		{"prefix with separator", "[format]\noutput_prefix = \"out/\"\n", "path separator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeManifest(t, t.TempDir(), tt.content))
			if !errors.Is(err, ErrInvalidManifest) {
				t.Fatalf("expected ErrInvalidManifest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[format]\nstrip_comments = false\n")
	nested := filepath.Join(root, "Core", "Src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := LoadManifest(nested)
	if err != nil || !ok {
		t.Fatalf("LoadManifest: ok=%v err=%v", ok, err)
	}
	wantRoot, _ := filepath.Abs(root)
	if m.Root != wantRoot {
		t.Errorf("root = %q, want %q", m.Root, wantRoot)
	}
	if m.Config.Format.StripComments {
		t.Error("expected manifest values to be applied")
	}

	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || gotRoot != wantRoot {
		t.Errorf("FindProjectRoot = %q, %v, %v", gotRoot, ok, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Encode(DefaultConfig())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg, err := LoadConfig(writeManifest(t, t.TempDir(), string(data)))
	if err != nil {
		t.Fatalf("LoadConfig: %v\n%s", err, data)
	}
	if !slices.Equal(cfg.Format.Extensions, DefaultConfig().Format.Extensions) {
		t.Errorf("extensions lost: %v", cfg.Format.Extensions)
	}
}

func TestWorkspaceDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := STM32Config{Workspace: "~/ws"}.WorkspaceDir()
	if err != nil {
		t.Fatalf("WorkspaceDir: %v", err)
	}
	if got != filepath.Join(home, "ws") {
		t.Errorf("WorkspaceDir = %q", got)
	}
	if got, _ := (STM32Config{Workspace: "/abs/ws/"}).WorkspaceDir(); got != "/abs/ws" {
		t.Errorf("WorkspaceDir = %q, want /abs/ws", got)
	}
}

func TestHasExtension(t *testing.T) {
	cfg := DefaultConfig().Format
	for path, want := range map[string]bool{"main.c": true, "main.h": true, "main.cpp": false, "Makefile": false} {
		if got := cfg.HasExtension(path); got != want {
			t.Errorf("HasExtension(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCombine(t *testing.T) {
	a, b := Sum([]byte("a")), Sum([]byte("b"))
	if Combine(a, b) == Combine(b, a) {
		t.Error("Combine must depend on order")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Error("Combine must be deterministic")
	}
	if !(Digest{}).IsZero() || a.IsZero() {
		t.Error("IsZero mismatch")
	}
	if len(a.String()) != 64 {
		t.Errorf("unexpected hex length %d", len(a.String()))
	}
}
