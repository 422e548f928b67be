package handlers

import (
	"fmt"
	"os"
	"strings"
)

// envPair is a single KEY=value entry for an env file.
type envPair struct {
	Key   string
	Value string
}

// writeEnvFile writes `export KEY='value'` lines with owner-only
// permissions, suitable for `source`-ing into a shell. Embedded single
// quotes are escaped the shell way: the quote closes, an escaped quote
// follows, and quoting reopens.
func writeEnvFile(path string, pairs []envPair) error {
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "export %s='%s'\n", p.Key, strings.ReplaceAll(p.Value, "'", `'\''`))
	}

	if err := writeFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readEnvFile parses an env file written by writeEnvFile. A missing file
// yields an empty map: callers treat absent values as a prerequisite step
// not having run yet.
func readEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "export "))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = strings.ReplaceAll(strings.Trim(value, "'\""), `'\''`, "'")
	}
	return values, nil
}
