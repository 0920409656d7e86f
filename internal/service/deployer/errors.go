package deployer

import "errors"

var (
	// ErrArtifactNotFound is returned when no attachment could be resolved or
	// downloaded, including authentication failures and transport errors.
	ErrArtifactNotFound = errors.New("build artifact not found")
	// ErrFilesystem is returned when removing the output directory or writing
	// the archive fails.
	ErrFilesystem = errors.New("filesystem operation failed")
	// ErrRunInProgress is returned when another live process holds the run marker.
	ErrRunInProgress = errors.New("another deployment is running in this directory")
)
