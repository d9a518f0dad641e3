//go:build !unix

package gitcmd

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
