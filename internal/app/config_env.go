package app

import (
    "os"
    "strings"
)

// Environment variable names.
const (
    EnvSourceDir  = "GSMIGRATE_SOURCE_DIR"
    EnvTargetRoot = "GSMIGRATE_TARGET_ROOT"
    EnvProfile    = "GSMIGRATE_PROFILE"
    EnvManifest   = "GSMIGRATE_MANIFEST"
    EnvPDFDir     = "GSMIGRATE_PDF_DIR"
    EnvHeaders    = "GSMIGRATE_HEADERS"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }

    if v := strings.TrimSpace(os.Getenv(EnvSourceDir)); v != "" { cfg.SourceDir = v }
    if v := strings.TrimSpace(os.Getenv(EnvTargetRoot)); v != "" { cfg.TargetRoot = v }
    if v := strings.TrimSpace(os.Getenv(EnvProfile)); v != "" { cfg.Profile = v }
    if v := strings.TrimSpace(os.Getenv(EnvManifest)); v != "" { cfg.ManifestPath = v }
    if v := strings.TrimSpace(os.Getenv(EnvPDFDir)); v != "" { cfg.PDFDir = v }
    if v := strings.TrimSpace(os.Getenv(EnvHeaders)); v != "" { cfg.HeadersPath = v }

    // Booleans override when env present and truthy/falsey
    setBool := func(dst *bool, envKey string) {
        if v, ok := parseBool(os.Getenv(envKey)); ok {
            *dst = v
        }
    }
    setBool(&cfg.DryRun, "DRY_RUN")
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.Overwrite, "OVERWRITE")
}

func parseBool(s string) (value, ok bool) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "1", "true", "yes", "on":
        return true, true
    case "0", "false", "no", "off":
        return false, true
    }
    return false, false
}
