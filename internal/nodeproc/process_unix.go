//go:build !windows

package nodeproc

import (
	"os/exec"
	"syscall"
)

// configure puts the child in its own process group and signals the whole
// group on cancellation, so anything the module spawned exits with it.
func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
	cmd.Cancel = func() error {
		pgid, err := syscall.Getpgid(cmd.Process.Pid)
		if err == nil {
			return syscall.Kill(-pgid, syscall.SIGTERM)
		}
		return cmd.Process.Signal(syscall.SIGTERM)
	}
}
