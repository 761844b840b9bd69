package histogram

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/banshee-data/bee.report/internal/monitoring"
)

// openBrowser is swapped out in tests.
var openBrowser = func(target string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{target}
	case "linux":
		cmd = "xdg-open"
		args = []string{target}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", target}
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return exec.Command(cmd, args...).Start()
}

// Display renders req to a temporary HTML page and opens it in the default
// browser. It returns the page path so the caller can report it.
func Display(req Request) (string, error) {
	f, err := os.CreateTemp("", "bee-report-*.html")
	if err != nil {
		return "", fmt.Errorf("create temp page: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := (HTMLRenderer{}).Render(req, path); err != nil {
		return "", err
	}
	if err := openBrowser(path); err != nil {
		monitoring.Logf("failed to open browser, histogram left at %s: %v", path, err)
	}
	return path, nil
}
