package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/demoplatform/democtl/internal/util/naming"
	"github.com/demoplatform/democtl/internal/util/prerequisites"
)

// ExitError reports an installer run that finished with a nonzero status.
// The installer's own output has already been streamed through, so the exit
// status is all that is left to surface.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("installer exited with status %d", e.Code)
}

// Runner invokes the cluster installer binary with its output streamed
// through to the operator.
type Runner struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner returns a Runner wired to the standard streams.
func NewRunner() *Runner {
	return &Runner{
		Binary: prerequisites.InstallerBinary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CreateCluster runs the installer against the given asset directory. The
// installer owns cluster bring-up end to end; this call blocks until it
// finishes, which takes on the order of 40 minutes.
func (r *Runner) CreateCluster(ctx context.Context, dir string) error {
	return r.run(ctx, "create", "cluster", "--dir", dir, "--log-level", "info")
}

func (r *Runner) run(ctx context.Context, args ...string) error {
	// #nosec G204 -- arguments are fixed subcommands plus a local directory
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %s: %w", r.Binary, err)
	}
	return nil
}

// Installed reports whether the asset directory holds credentials from a
// completed installation.
func Installed(dir string) bool {
	_, err := os.Stat(naming.KubeconfigPath(dir))
	return err == nil
}

// PrepareAssets writes the rendered install config into the cluster's asset
// directory. A directory already holding cluster credentials refuses
// preparation so live credentials are never overwritten without explicit
// operator intent. The config is also written to install-config.backup.yaml
// because the installer consumes the original during the run.
func PrepareAssets(dir string, installConfig []byte) error {
	if Installed(dir) {
		return fmt.Errorf("%s already holds cluster credentials, remove the directory to reinstall", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory %s: %w", dir, err)
	}
	if err := os.WriteFile(naming.InstallConfigPath(dir), installConfig, 0o600); err != nil {
		return fmt.Errorf("failed to write install config: %w", err)
	}
	if err := os.WriteFile(naming.InstallConfigBackupPath(dir), installConfig, 0o600); err != nil {
		return fmt.Errorf("failed to write install config backup: %w", err)
	}
	return nil
}
