// Package common holds helpers shared by the deployment stages.
//
// It provides a shell command runner that captures output and turns non-zero
// exits into SubprocessError values.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
