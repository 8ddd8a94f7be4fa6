package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    toml "github.com/pelletier/go-toml/v2"
    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/gsmigrate/internal/profile"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
    Source  string `yaml:"source" json:"source" toml:"source"`
    Target  string `yaml:"target" json:"target" toml:"target"`
    Profile string `yaml:"profile" json:"profile" toml:"profile"`

    DryRun    bool `yaml:"dryRun" json:"dryRun" toml:"dryRun"`
    Overwrite bool `yaml:"overwrite" json:"overwrite" toml:"overwrite"`
    Verbose   bool `yaml:"verbose" json:"verbose" toml:"verbose"`

    Manifest string `yaml:"manifest" json:"manifest" toml:"manifest"`

    PDF struct {
        Dir  string `yaml:"dir" json:"dir" toml:"dir"`
        Font string `yaml:"font" json:"font" toml:"font"`
    } `yaml:"pdf" json:"pdf" toml:"pdf"`

    Forum struct {
        Headers string `yaml:"headers" json:"headers" toml:"headers"`
    } `yaml:"forum" json:"forum" toml:"forum"`

    Profiles []profile.Profile `yaml:"profiles" json:"profiles" toml:"profiles"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := strings.ToLower(filepath.Ext(path)); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    case ".toml":
        if err := toml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse toml: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// Flag defaults. ApplyFileConfig treats a field still at its default as unset.
const (
    SourceDirDefault  = "data/pages"
    TargetRootDefault = "content"
    ProfileDefault    = "text"
)

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default. Flags should already
// have been parsed; explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if (cfg.SourceDir == "" || cfg.SourceDir == SourceDirDefault) && fc.Source != "" { cfg.SourceDir = fc.Source }
    if (cfg.TargetRoot == "" || cfg.TargetRoot == TargetRootDefault) && fc.Target != "" { cfg.TargetRoot = fc.Target }
    if (cfg.Profile == "" || cfg.Profile == ProfileDefault) && fc.Profile != "" { cfg.Profile = fc.Profile }

    if !cfg.DryRun && fc.DryRun { cfg.DryRun = true }
    if !cfg.Overwrite && fc.Overwrite { cfg.Overwrite = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }

    if cfg.ManifestPath == "" && fc.Manifest != "" { cfg.ManifestPath = fc.Manifest }
    if cfg.PDFDir == "" && fc.PDF.Dir != "" { cfg.PDFDir = fc.PDF.Dir }
    if cfg.PDFFont == "" && fc.PDF.Font != "" { cfg.PDFFont = fc.PDF.Font }
    if cfg.HeadersPath == "" && fc.Forum.Headers != "" { cfg.HeadersPath = fc.Forum.Headers }

    if len(fc.Profiles) > 0 { cfg.Profiles = append(cfg.Profiles, fc.Profiles...) }
}

// ValidateConfig performs minimal validation of required settings. Profile
// names are checked against the builtins plus the configured profiles.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.SourceDir) == "" {
        return errors.New("config: source directory is required")
    }
    if strings.TrimSpace(cfg.TargetRoot) == "" {
        return errors.New("config: target root is required")
    }
    set, err := profile.Builtin().With(cfg.Profiles...)
    if err != nil {
        return fmt.Errorf("config: %w", err)
    }
    if _, err := set.Get(cfg.Profile); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    return nil
}
