package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rybarix/snaptail/internal/config"
)

func TestConfigCommand_Defaults(t *testing.T) {
	stdout, _, err := executeCommand("config")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, ".snaptail", cfg.ProjectDir)
	assert.Equal(t, config.DefaultGracePeriod, cfg.GracePeriod)
	assert.Equal(t, config.DefaultCORSOrigins, cfg.CORSOrigins)
	assert.Contains(t, stdout, "grace-period: 5s")
}

func TestConfigCommand_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "snaptail.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: 9001\nhost: 127.0.0.1\ntemplate: react-swc\n"), 0o644))

	t.Setenv("SNAPTAIL_HOST", "localhost")

	stdout, _, err := executeCommand("--config", file, "-p", "9002", "config")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))

	assert.Equal(t, 9002, cfg.Port, "flag beats file")
	assert.Equal(t, "localhost", cfg.Host, "env beats file")
	assert.Equal(t, "react-swc", cfg.Template, "file beats default")
}
