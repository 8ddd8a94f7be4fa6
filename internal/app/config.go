package app

import "github.com/hyperifyio/gsmigrate/internal/profile"

// Config holds runtime configuration for the application.
type Config struct {
	// Source is the directory holding the CMS page exports.
	SourceDir string
	// TargetRoot is the content root that profile targets are relative to.
	TargetRoot string
	// Profile names the content category a run migrates.
	Profile string

	// Behavior
	DryRun    bool
	Overwrite bool
	Verbose   bool

	// Outputs besides the markdown files
	ManifestPath string
	PDFDir       string
	PDFFont      string

	// Forum header table overlay (YAML)
	HeadersPath string

	// Profiles from the config file, added to or replacing the builtins.
	Profiles []profile.Profile
}
