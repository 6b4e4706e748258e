package scaffold

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/rybarix/snaptail/internal/output"
)

//go:embed templates/server_snaptail.py
var shimSource []byte

// Environment variables read by the API shim.
const (
	EnvAPIFile     = "SNAPTAIL_API_FILE"
	EnvCORSOrigins = "SNAPTAIL_CORS_ORIGINS"
)

// EntrySource returns the entry module that mounts App with an apiUrl
// pointing at the API server.
func EntrySource(host string, port int) string {
	apiURL := "http://" + net.JoinHostPort(host, strconv.Itoa(port))

	lines := []string{
		"import { StrictMode } from 'react'",
		"import { createRoot } from 'react-dom/client'",
		"import { App } from './" + AppFile + "'",
		"createRoot(document.getElementById('root')).render(",
		"<StrictMode>",
		fmt.Sprintf("    <App apiUrl={%q} />", apiURL),
		"</StrictMode>",
		")",
	}

	return strings.Join(lines, "\n")
}

// WriteEntry rewrites src/main.jsx for the given API address.
func (s *Scaffolder) WriteEntry(host string, port int) error {
	w := output.NewFileWriter(s.EntryPath(), output.WithLogger(s.logger))
	if err := w.Write([]byte(EntrySource(host, port))); err != nil {
		return fmt.Errorf("writing entry module: %w", err)
	}

	s.logger.Debug("entry module written", slog.String("path", w.Path()))

	return nil
}

// WriteAPIShim rewrites the Python module uvicorn serves. The shim loads the
// user's routes from the file named by SNAPTAIL_API_FILE.
func (s *Scaffolder) WriteAPIShim() error {
	w := output.NewFileWriter(s.ShimPath(), output.WithLogger(s.logger))
	if err := w.Write(shimSource); err != nil {
		return fmt.Errorf("writing API shim: %w", err)
	}

	return nil
}

// ShimEnv returns the environment the API shim expects.
func ShimEnv(apiFile string, origins []string) []string {
	return []string{
		EnvAPIFile + "=" + apiFile,
		EnvCORSOrigins + "=" + strings.Join(origins, ","),
	}
}
