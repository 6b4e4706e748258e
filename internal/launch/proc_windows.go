//go:build windows

package launch

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// terminate kills the process. Windows has no portable termination request
// for console children.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}

	return cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) {
	_ = terminate(cmd)
}
