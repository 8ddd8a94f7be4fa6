package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// manifestMeta captures high-level run details that aid reproducibility.
type manifestMeta struct {
	RunID       string    `json:"run_id"`
	Tool        string    `json:"tool"`
	Profile     string    `json:"profile"`
	DryRun      bool      `json:"dry_run"`
	Migrated    int       `json:"migrated"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	GeneratedAt time.Time `json:"generated_at"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of the given text.
func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

func newManifestMeta(dryRun bool, r Report) manifestMeta {
	return manifestMeta{
		RunID:       uuid.NewString(),
		Tool:        "gsmigrate " + BuildVersion,
		Profile:     r.Profile,
		DryRun:      dryRun,
		Migrated:    r.Migrated,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		GeneratedAt: time.Now().UTC(),
	}
}

// marshalManifestJSON encodes a machine-readable sidecar manifest.
func marshalManifestJSON(meta manifestMeta, entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	payload := struct {
		Meta    manifestMeta `json:"meta"`
		Entries []Entry      `json:"entries"`
	}{Meta: meta, Entries: entries}
	return json.MarshalIndent(payload, "", "  ")
}

func writeManifest(path string, dryRun bool, r Report) error {
	data, err := marshalManifestJSON(newManifestMeta(dryRun, r), r.Entries)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(path, append(data, '\n'))
}
