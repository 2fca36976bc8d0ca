// Package config loads and validates the site configuration.
//
// The raw YAML document is decoded and lowered into the typed Config struct
// exactly once, at load time. The build pipeline never inspects raw maps;
// per-extension option maps are carried opaquely and validated by the
// extension that owns them.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/errors"
)

// Config is the fully-typed site configuration.
type Config struct {
	// Site identity
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	BaseURL     string         `yaml:"base_url"`
	Params      map[string]any `yaml:"params"` // site-wide template parameters

	// Directories, relative to the site root unless absolute.
	ContentDir string `yaml:"content_dir"`
	LayoutsDir string `yaml:"layouts_dir"`
	StaticDir  string `yaml:"static_dir"`
	OutputDir  string `yaml:"output_dir"`
	CacheDir   string `yaml:"cache_dir"`

	// Content handling
	IncludeDrafts bool              `yaml:"include_drafts"`
	PageSize      int               `yaml:"page_size"`
	Taxonomies    []string          `yaml:"taxonomies"`
	ContentTypes  []ContentTypeRule `yaml:"content_types"`

	Markup MarkupOptions `yaml:"markup"`

	Extensions []ExtensionConfig `yaml:"extensions"`

	// ContinueOnRenderError reports template failures per page instead of
	// aborting the whole build. Off by default: partial output is worse
	// than no output.
	ContinueOnRenderError bool `yaml:"continue_on_render_error"`
}

// ContentTypeRule maps a path glob to a content type and its metadata defaults.
// Patterns use doublestar syntax against the content-relative source path,
// e.g. "posts/**" or "docs/*/guide.md".
type ContentTypeRule struct {
	Pattern  string         `yaml:"pattern"`
	Type     string         `yaml:"type"`
	Defaults map[string]any `yaml:"defaults"`
}

// MarkupOptions are pass-through settings for the markup renderer. The
// pipeline never interprets them beyond handing them to the renderer.
type MarkupOptions struct {
	Highlight           bool     `yaml:"highlight"`
	HighlightStyle      string   `yaml:"highlight_style"`
	HighlightMultiTheme bool     `yaml:"highlight_multi_theme"` // emit alternate-theme CSS variables
	HeadingAnchors      bool     `yaml:"heading_anchors"`
	Autolink            bool     `yaml:"autolink"`
	ExternalLinkRel     string   `yaml:"external_link_rel"`    // injected on off-site links, e.g. "noopener"
	ExternalLinkTarget  string   `yaml:"external_link_target"` // e.g. "_blank"
	SmartQuotes         bool     `yaml:"smart_quotes"`
	MentionBaseURL      string   `yaml:"mention_base_url"` // expands @name mentions when set
	DefaultAttributes   []string `yaml:"default_attributes"`
	UnsafeHTML          bool     `yaml:"unsafe_html"`
}

// ExtensionConfig names an enabled extension and its option map.
type ExtensionConfig struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

// Load reads the YAML configuration at path, overlays environment values,
// applies defaults, and validates. It is the only place raw config maps
// are decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "read configuration")
	}

	// .env values never override the process environment.
	_ = godotenv.Load()

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "parse configuration").
			WithContext("path", path)
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their conventional values.
func ApplyDefaults(cfg *Config) {
	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}
	if cfg.LayoutsDir == "" {
		cfg.LayoutsDir = "layouts"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "static"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "public"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".sitegen-cache"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.Params == nil {
		cfg.Params = map[string]any{}
	}
	if cfg.Markup.HighlightStyle == "" {
		cfg.Markup.HighlightStyle = "github"
	}
}

// Validate checks structural invariants of the lowered configuration.
func Validate(cfg *Config) error {
	if cfg.OutputDir == "" {
		return errors.ValidationFailed("output_dir", "must not be empty")
	}
	if cfg.OutputDir == "/" {
		return errors.ValidationFailed("output_dir", "refusing to reconcile the filesystem root")
	}
	if cfg.PageSize <= 0 {
		return errors.ValidationFailed("page_size", fmt.Sprintf("must be positive, got %d", cfg.PageSize))
	}

	seen := map[string]struct{}{}
	for _, tax := range cfg.Taxonomies {
		if tax == "" {
			return errors.ValidationFailed("taxonomies", "taxonomy name must not be empty")
		}
		if _, dup := seen[tax]; dup {
			return errors.ValidationFailed("taxonomies", fmt.Sprintf("duplicate taxonomy %q", tax))
		}
		seen[tax] = struct{}{}
	}

	for i, rule := range cfg.ContentTypes {
		if rule.Pattern == "" {
			return errors.ValidationFailed("content_types", fmt.Sprintf("rule %d: pattern must not be empty", i))
		}
		if rule.Type == "" {
			return errors.ValidationFailed("content_types", fmt.Sprintf("rule %d: type must not be empty", i))
		}
	}

	extSeen := map[string]struct{}{}
	for _, ext := range cfg.Extensions {
		if ext.Name == "" {
			return errors.ValidationFailed("extensions", "extension name must not be empty")
		}
		if _, dup := extSeen[ext.Name]; dup {
			return errors.ValidationFailed("extensions", fmt.Sprintf("extension %q enabled twice", ext.Name))
		}
		extSeen[ext.Name] = struct{}{}
	}

	return nil
}
