//go:build !darwin && !linux

package core

import (
	"os/exec"
	"time"
)

// setupProcessGroup falls back to killing the direct child only.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = 2 * time.Second
}
