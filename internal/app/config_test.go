package app

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func writeFile(t *testing.T, path, content string) {
    t.Helper()
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        t.Fatalf("mkdir: %v", err)
    }
    if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
        t.Fatalf("write %s: %v", path, err)
    }
}

func TestLoadConfigFile_Formats(t *testing.T) {
    dir := t.TempDir()
    files := map[string]string{
        "c.yaml": "source: pages\ntarget: out\nprofile: essay\npdf:\n  dir: proofs\nprofiles:\n  - name: essay\n    type: texts\n    preset: narrative\n    target: essays\n",
        "c.json": `{"source":"pages","target":"out","profile":"essay","pdf":{"dir":"proofs"},"profiles":[{"name":"essay","type":"texts","preset":"narrative","target":"essays"}]}`,
        "c.toml": "source = \"pages\"\ntarget = \"out\"\nprofile = \"essay\"\n[pdf]\ndir = \"proofs\"\n[[profiles]]\nname = \"essay\"\ntype = \"texts\"\npreset = \"narrative\"\ntarget = \"essays\"\n",
        "c.conf": "source: pages\ntarget: out\nprofile: essay\npdf:\n  dir: proofs\nprofiles:\n  - name: essay\n    type: texts\n    preset: narrative\n    target: essays\n",
    }
    for name, content := range files {
        path := filepath.Join(dir, name)
        writeFile(t, path, content)
        fc, err := LoadConfigFile(path)
        if err != nil {
            t.Fatalf("%s: %v", name, err)
        }
        if fc.Source != "pages" || fc.Target != "out" || fc.Profile != "essay" || fc.PDF.Dir != "proofs" {
            t.Fatalf("%s: unexpected %+v", name, fc)
        }
        if len(fc.Profiles) != 1 || fc.Profiles[0].Preset != "narrative" || fc.Profiles[0].Target != "essays" {
            t.Fatalf("%s: profiles %+v", name, fc.Profiles)
        }
    }
}

func TestLoadConfigFile_Invalid(t *testing.T) {
    path := filepath.Join(t.TempDir(), "bad.toml")
    writeFile(t, path, "source = \n")
    if _, err := LoadConfigFile(path); err == nil || !strings.Contains(err.Error(), "toml") {
        t.Fatalf("expected toml parse error, got %v", err)
    }
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
    var fc FileConfig
    fc.Source = "file-pages"
    fc.Target = "file-out"
    fc.Profile = "route"
    fc.Overwrite = true
    fc.Manifest = "run.json"

    cfg := Config{SourceDir: SourceDirDefault, TargetRoot: "explicit", Profile: ProfileDefault}
    ApplyFileConfig(&cfg, fc)
    if cfg.SourceDir != "file-pages" {
        t.Fatalf("default source should be replaced, got %q", cfg.SourceDir)
    }
    if cfg.TargetRoot != "explicit" {
        t.Fatalf("explicit target should win, got %q", cfg.TargetRoot)
    }
    if cfg.Profile != "route" || !cfg.Overwrite || cfg.ManifestPath != "run.json" {
        t.Fatalf("unexpected cfg %+v", cfg)
    }
}

func TestValidateConfig(t *testing.T) {
    ok := Config{SourceDir: "p", TargetRoot: "c", Profile: "text"}
    if err := ValidateConfig(ok); err != nil {
        t.Fatalf("valid config rejected: %v", err)
    }
    bad := []Config{
        {TargetRoot: "c", Profile: "text"},
        {SourceDir: "p", Profile: "text"},
        {SourceDir: "p", TargetRoot: "c", Profile: "missing"},
    }
    for i, c := range bad {
        if err := ValidateConfig(c); err == nil {
            t.Fatalf("case %d: expected error", i)
        }
    }
}
