package builders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/proxystack/wasmbench/pkg/manifest"
)

// installInfoFile sits next to the installed binary and records how it was
// produced.
const installInfoFile = ".wasmbench-build.json"

// InstallInfo is the provenance record written alongside a binary.
type InstallInfo struct {
	Backend  string    `json:"backend"`
	Flavor   string    `json:"flavor"`
	Target   string    `json:"target"`
	Revision string    `json:"revision,omitempty"`
	BuiltAt  time.Time `json:"built_at"`
}

// Install copies a built binary into the backend's exe dir and writes its
// provenance record.
func Install(result *BuildResult, backend manifest.Backend, target string) error {
	if err := os.MkdirAll(backend.ExeDir, 0755); err != nil {
		return fmt.Errorf("failed to create exe dir: %w", err)
	}

	dest := backend.BinaryPath()
	if err := copyFile(result.OutputPath, dest); err != nil {
		return fmt.Errorf("failed to install binary: %w", err)
	}

	info := InstallInfo{
		Backend:  backend.Name,
		Flavor:   backend.Flavor,
		Target:   target,
		Revision: result.Revision,
		BuiltAt:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode install info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(backend.ExeDir, installInfoFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write install info: %w", err)
	}

	return nil
}

// ReadInstallInfo loads the provenance record of an installed backend. A
// missing record is not an error; ok reports whether one was found.
func ReadInstallInfo(backend manifest.Backend) (InstallInfo, bool, error) {
	data, err := os.ReadFile(filepath.Join(backend.ExeDir, installInfoFile))
	if err != nil {
		if os.IsNotExist(err) {
			return InstallInfo{}, false, nil
		}
		return InstallInfo{}, false, err
	}

	var info InstallInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return InstallInfo{}, false, fmt.Errorf("corrupt install info: %w", err)
	}
	return info, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
