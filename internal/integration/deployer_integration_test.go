package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-deployer/internal/config"
	"github.com/oshokin/app-deployer/internal/service/deployer"
)

// TestDeployer_Run_FromConfigFile serves an artifact over HTTP and deploys it
// using settings read from a YAML file plus an environment override.
//
//nolint:funlen // Integration test requires comprehensive setup and verification.
func TestDeployer_Run_FromConfigFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell commands")
	}

	if _, err := exec.LookPath("unzip"); err != nil {
		t.Skip("unzip is not installed")
	}

	dir := t.TempDir()

	// Prepare the archive served by the fake downloads API.
	var archive bytes.Buffer

	zw := zip.NewWriter(&archive)
	f, err := zw.Create("dist/index.html")
	require.NoError(t, err)
	_, err = f.Write([]byte("<html>v7</html>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	mux := http.NewServeMux()
	mux.HandleFunc("/2.0/repositories/org/app/downloads/latest.zip", func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "u" || pass != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Disposition", `attachment; filename="build-7.zip"`)
		_, _ = w.Write(archive.Bytes())
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	// Persist everything except the password, which comes from the environment.
	cfgPath := filepath.Join(dir, "deployer.yaml")
	cfg := config.Default()
	cfg.URL = ts.URL
	cfg.Repo = "org/app"
	cfg.Username = "u"
	cfg.Filename = "latest.zip"
	cfg.WorkDir = dir
	cfg.InstallCommand = "touch installed"

	require.NoError(t, config.Save(cfgPath, cfg))
	t.Setenv(config.EnvPrefix+"PASSWORD", "p")

	outputPath, err := deployer.Run(context.Background(), &deployer.Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	require.Equal(t, "dist", outputPath)

	_, err = os.Stat(filepath.Join(dir, "build-7.zip"))
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	require.Equal(t, "<html>v7</html>", string(contents))

	_, err = os.Stat(filepath.Join(dir, "dist", "installed"))
	require.NoError(t, err)
}

// TestDeployer_Run_MissingCredentials never contacts the server.
func TestDeployer_Run_MissingCredentials(t *testing.T) {
	var hits atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	t.Setenv(config.EnvPrefix+"PASSWORD", "")

	_, err := deployer.Run(context.Background(), &deployer.Options{
		Overrides: map[string]any{
			"url":      ts.URL,
			"repo":     "org/app",
			"username": "u",
			"work_dir": t.TempDir(),
		},
	})
	require.ErrorIs(t, err, config.ErrRequiredInput)
	require.Zero(t, hits.Load())
}
