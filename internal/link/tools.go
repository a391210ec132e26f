package link

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// findTool locates an LLVM toolchain executable, checking PATH first and
// then falling back to common Homebrew install locations. Grounded on the
// teacher's findLLC/findOpt (cmd/malphas/main.go), generalized to a single
// helper since this repo needs the same lookup for llc, opt, and llvm-link.
func findTool(log *logrus.Entry, name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	if brewPrefix := os.Getenv("HOMEBREW_PREFIX"); brewPrefix != "" {
		candidate := filepath.Join(brewPrefix, "opt/llvm/bin", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	} else {
		for _, prefix := range []string{"/opt/homebrew", "/usr/local"} {
			candidate := filepath.Join(prefix, "opt/llvm/bin", name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	log.WithField("tool", name).Debug("llvm tool not found in PATH or common install locations")
	return "", fmt.Errorf("%s not found in PATH or common installation locations", name)
}
