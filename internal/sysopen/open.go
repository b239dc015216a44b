// Package sysopen reveals filesystem paths in the platform's file
// manager by shelling out to the standard opener for the current OS:
// xdg-open on Linux and other Unixes, open on macOS, and explorer on
// Windows.
package sysopen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rskill-dev/rskill/internal/model"
)

// Reveal opens path in the platform file manager. The path must exist;
// openers silently spawn a window for dead paths on some desktops, so
// the existence check happens here where it can produce a real error.
func Reveal(ctx context.Context, path string) error {
	return reveal(ctx, runtime.GOOS, path)
}

// reveal is Reveal with the platform injected for tests.
func reveal(ctx context.Context, goos, path string) error {
	if _, err := os.Stat(path); err != nil {
		return model.WrapCLIError(
			model.ExitInvalidInput,
			fmt.Sprintf("cannot open %s", path),
			err,
		)
	}

	name, args := openerCommand(goos, path)

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// explorer.exe reports exit code 1 even when it opened the
		// window, so a plain exit error cannot be trusted there.
		var exitErr *exec.ExitError
		if goos == "windows" && errors.As(err, &exitErr) {
			return nil
		}
		msg := fmt.Sprintf("failed to open %s", path)
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			msg = fmt.Sprintf("%s: %s", msg, detail)
		}
		return model.WrapCLIError(model.ExitGeneralError, msg, err)
	}
	return nil
}

// openerCommand returns the opener binary and arguments for a platform.
func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "explorer", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
