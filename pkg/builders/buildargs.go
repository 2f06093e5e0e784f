package builders

import (
	"fmt"
	"os"
	"strings"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

const flagPrefix = "wasm="

// SelectFlavor rewrites the build-args file so that exactly one wasm= line
// is uncommented: the one for flavor. Known flavors absent from the file are
// added as comments, so the file documents the alternatives.
func SelectFlavor(path, flavor string) error {
	known := false
	for _, f := range manifest.Flavors {
		if f == flavor {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown wasm flavor %q", flavor)
	}

	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read build args file: %w", err)
	}

	seen := make(map[string]bool)
	out := make([]string, 0, len(lines)+len(manifest.Flavors))
	for _, line := range lines {
		f, isFlag := flagFlavor(line)
		if !isFlag {
			if line != "" || len(out) > 0 {
				out = append(out, line)
			}
			continue
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, renderFlag(f, f == flavor))
	}

	for _, f := range manifest.Flavors {
		if !seen[f] {
			out = append(out, renderFlag(f, f == flavor))
		}
	}

	content := strings.Join(out, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write build args file: %w", err)
	}
	return nil
}

// ActiveFlavor returns the single uncommented wasm= flavor in the file, or
// an error when zero or several are active.
func ActiveFlavor(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read build args file: %w", err)
	}

	var active []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if f, ok := strings.CutPrefix(trimmed, flagPrefix); ok {
			active = append(active, f)
		}
	}

	switch len(active) {
	case 1:
		return active[0], nil
	case 0:
		return "", fmt.Errorf("no active %s line in %s", flagPrefix, path)
	default:
		return "", fmt.Errorf("%d active %s lines in %s, want exactly one", len(active), flagPrefix, path)
	}
}

// flagFlavor extracts the flavor from a wasm= line, commented or not.
func flagFlavor(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
	f, ok := strings.CutPrefix(trimmed, flagPrefix)
	if !ok || f == "" {
		return "", false
	}
	return f, true
}

func renderFlag(flavor string, active bool) string {
	if active {
		return flagPrefix + flavor
	}
	return "# " + flagPrefix + flavor
}
