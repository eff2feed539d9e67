package optiman

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
)

// tcpIfaceDirPrefix is the prefix of the generated server crate directory
// inside an optimizer directory.
const tcpIfaceDirPrefix = "tcp_iface_"

// launchLockFile guards an optimizer directory against concurrent launches
// by two managers.
const launchLockFile = ".optiman.lock"

var execCommandFn = exec.Command

// launchServer starts the generated server build in its crate directory and
// detaches. Spawn failures (missing toolchain, bad directory) are returned
// synchronously; after a successful start the child's lifetime is on its
// own — termination happens through the protocol Kill message, never
// through process signaling, and exit is not reported back.
func launchServer(launchPath string, build BuildInfo, log *slog.Logger) error {
	unlock, err := acquireLaunchLock(filepath.Join(launchPath, launchLockFile))
	if err != nil {
		return err
	}

	args := []string{"run", "-q"}
	if build.BuildMode == BuildRelease {
		args = append(args, "--release")
	}

	cmd := execCommandFn("cargo", args...)
	cmd.Dir = filepath.Join(launchPath, tcpIfaceDirPrefix+build.OptimizerName)

	log.Info("starting optimizer server",
		"optimizer", build.OptimizerName,
		"build_mode", build.BuildMode,
		"dir", cmd.Dir)

	if err := cmd.Start(); err != nil {
		_ = unlock()
		return fmt.Errorf("starting optimizer server in %s: %w", cmd.Dir, err)
	}
	// The lock only covers the spawn; once the child runs, the bound
	// port is what keeps a second manager out.
	_ = unlock()

	go func() { _ = cmd.Wait() }()
	return nil
}
