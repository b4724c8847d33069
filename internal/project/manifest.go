package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidManifest marks a cbrace.toml that could not be used.
var ErrInvalidManifest = errors.New("invalid manifest")

// Config is the decoded cbrace.toml.
type Config struct {
	Format FormatConfig `toml:"format"`
	STM32  STM32Config  `toml:"stm32"`
}

// FormatConfig holds the [format] table.
type FormatConfig struct {
	StripComments      bool     `toml:"strip_comments"`
	BraceBeforeComment bool     `toml:"brace_before_comment"`
	Extensions         []string `toml:"extensions"`
	Encoding           string   `toml:"encoding"`
	OutputPrefix       string   `toml:"output_prefix"`
}

// STM32Config holds the [stm32] table: where STM32CubeIDE keeps projects
// and which project directories hold sources.
type STM32Config struct {
	Workspace string   `toml:"workspace"`
	Dirs      []string `toml:"dirs"`
}

// Manifest is a located and decoded cbrace.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// DefaultConfig returns the configuration used when no manifest exists
// and for keys a manifest leaves out.
func DefaultConfig() Config {
	return Config{
		Format: FormatConfig{
			StripComments:      true,
			BraceBeforeComment: true,
			Extensions:         []string{".c", ".h"},
			OutputPrefix:       "new_",
		},
		STM32: STM32Config{
			Workspace: filepath.Join("~", "STM32CubeIDE", "workspace_1.11.0"),
			Dirs:      []string{"Core/Src", "Core/Inc"},
		},
	}
}

// LoadManifest finds cbrace.toml above startDir and decodes it.
// ok is false when there is no manifest; callers then use DefaultConfig.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes the manifest at path on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	// списки из файла заменяют значения по умолчанию, а не дописываются к ним
	cfg.Format.Extensions = nil
	cfg.STM32.Dirs = nil

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: failed to parse TOML: %w", ErrInvalidManifest, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidManifest, path, strings.Join(keys, ", "))
	}

	def := DefaultConfig()
	if !meta.IsDefined("format", "extensions") {
		cfg.Format.Extensions = def.Format.Extensions
	}
	if !meta.IsDefined("stm32", "dirs") {
		cfg.STM32.Dirs = def.STM32.Dirs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, path, err)
	}
	return cfg, nil
}

// Validate checks values that decode fine but cannot be used.
func (c Config) Validate() error {
	if len(c.Format.Extensions) == 0 {
		return errors.New("[format].extensions must not be empty")
	}
	for _, ext := range c.Format.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("[format].extensions: %q must start with '.'", ext)
		}
	}
	if strings.ContainsRune(c.Format.OutputPrefix, filepath.Separator) || strings.Contains(c.Format.OutputPrefix, "/") {
		return fmt.Errorf("[format].output_prefix %q must not contain a path separator", c.Format.OutputPrefix)
	}
	if slices.Contains(c.STM32.Dirs, "") {
		return errors.New("[stm32].dirs must not contain empty entries")
	}
	return nil
}

// HasExtension reports whether path ends in one of the configured extensions.
func (c FormatConfig) HasExtension(path string) bool {
	return slices.Contains(c.Extensions, filepath.Ext(path))
}

// WorkspaceDir returns the STM32 workspace with a leading "~" expanded.
func (c STM32Config) WorkspaceDir() (string, error) {
	ws := c.Workspace
	if ws == "~" || strings.HasPrefix(ws, "~/") || strings.HasPrefix(ws, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		ws = filepath.Join(home, ws[1:])
	}
	return filepath.Clean(ws), nil
}

// Encode renders cfg as a cbrace.toml document.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
