package app

import (
    "bufio"
    "errors"
    "os"
    "strings"
)

// LoadEnvFiles loads one or more dotenv files of KEY=VALUE pairs into the
// process environment and returns the files that were read. Later files
// override earlier ones. Variables already present in the environment before
// the call are left alone. Lines starting with '#', blank lines and an
// optional leading "export " are handled. Values are not expanded.
func LoadEnvFiles(paths ...string) ([]string, error) {
    preset := make(map[string]bool)
    for _, kv := range os.Environ() {
        if eq := strings.IndexByte(kv, '='); eq > 0 {
            preset[kv[:eq]] = true
        }
    }
    var loaded []string
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p, preset); err != nil {
            // Missing files are not fatal; continue to next path
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return loaded, err
        }
        loaded = append(loaded, p)
    }
    return loaded, nil
}

func loadEnvFile(path string, preset map[string]bool) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" || strings.HasPrefix(line, "#") {
            continue
        }
        line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
        eq := strings.IndexByte(line, '=')
        if eq <= 0 {
            // ignore malformed lines silently
            continue
        }
        key := strings.TrimSpace(line[:eq])
        if preset[key] {
            continue
        }
        val := strings.TrimSpace(line[eq+1:])
        if len(val) >= 2 {
            if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
                val = val[1 : len(val)-1]
            }
        }
        _ = os.Setenv(key, val)
    }
    return scanner.Err()
}
