package runtimeconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrPreprocessorTableInvalid reports a preprocessor table that does not
// decode into PreprocessorSettings.
var ErrPreprocessorTableInvalid = errors.New("cjk config: preprocessor table is invalid")

// PreprocessorSettings mirrors the [preprocessor.fix-cjk-spacing] table of
// book.toml. Nil fields leave the current value untouched. mdBook's own keys
// (command, renderers, before, after) are ignored.
type PreprocessorSettings struct {
	FrontMatter *bool    `toml:"front-matter" json:"front-matter"`
	Cache       *bool    `toml:"cache" json:"cache"`
	CachePath   *string  `toml:"cache-path" json:"cache-path"`
	SkipDrafts  *bool    `toml:"skip-drafts" json:"skip-drafts"`
	Extensions  []string `toml:"extensions" json:"extensions"`
	LogLevel    *string  `toml:"log-level" json:"log-level"`
}

// Apply overlays the non-nil settings onto cfg.
func (s PreprocessorSettings) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if s.FrontMatter != nil {
		cfg.Markdown.FrontMatter = *s.FrontMatter
	}
	if s.Cache != nil {
		cfg.Cache.Enabled = *s.Cache
	}
	if s.CachePath != nil {
		cfg.Cache.Path = *s.CachePath
	}
	if s.SkipDrafts != nil {
		cfg.Book.SkipDrafts = *s.SkipDrafts
	}
	if len(s.Extensions) > 0 {
		cfg.Markdown.Extensions = append([]string(nil), s.Extensions...)
	}
	if s.LogLevel != nil && strings.TrimSpace(*s.LogLevel) != "" {
		cfg.Logging.Level = *s.LogLevel
	}
}

// LoadFile overlays a YAML configuration file onto cfg. Unknown keys are
// rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cjk config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("cjk config: decode %s: %w", path, err)
	}
	return nil
}

type bookTOML struct {
	Preprocessor map[string]toml.Primitive `toml:"preprocessor"`
}

// LoadBookTOML reads the [preprocessor.fix-cjk-spacing] table from an mdBook
// book.toml. A missing table yields zero settings.
func LoadBookTOML(path string) (PreprocessorSettings, error) {
	var book bookTOML
	meta, err := toml.DecodeFile(path, &book)
	if err != nil {
		return PreprocessorSettings{}, fmt.Errorf("cjk config: decode %s: %w", path, err)
	}
	primitive, ok := book.Preprocessor[PreprocessorName]
	if !ok {
		return PreprocessorSettings{}, nil
	}
	var settings PreprocessorSettings
	if err := meta.PrimitiveDecode(primitive, &settings); err != nil {
		return PreprocessorSettings{}, fmt.Errorf("%w: %v", ErrPreprocessorTableInvalid, err)
	}
	return settings, nil
}

// PreprocessorFromContext extracts the preprocessor table from the "config"
// object mdBook passes in the preprocessor context.
func PreprocessorFromContext(config json.RawMessage) (PreprocessorSettings, error) {
	if len(bytes.TrimSpace(config)) == 0 {
		return PreprocessorSettings{}, nil
	}
	var envelope struct {
		Preprocessor map[string]json.RawMessage `json:"preprocessor"`
	}
	if err := json.Unmarshal(config, &envelope); err != nil {
		return PreprocessorSettings{}, fmt.Errorf("%w: %v", ErrPreprocessorTableInvalid, err)
	}
	raw, ok := envelope.Preprocessor[PreprocessorName]
	if !ok {
		return PreprocessorSettings{}, nil
	}
	var settings PreprocessorSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return PreprocessorSettings{}, fmt.Errorf("%w: %v", ErrPreprocessorTableInvalid, err)
	}
	return settings, nil
}
