package deployer

import (
	"github.com/mitchellh/go-ps"
)

// processAlive reports whether a process with pid exists.
func processAlive(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	return process != nil, nil
}
