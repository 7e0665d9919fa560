package config

import (
	"os"
	"path/filepath"
)

// EnvHome names the suite home directory. Reports and the log go under
// <home>/reports unless OUTPUT_DIR says otherwise.
const EnvHome = "LOGINSUITE_HOME"

const (
	reportsDirName = "reports"
	logFileName    = "loginsuite.log"
)

// Home returns the suite home directory.
//
// Resolution order:
//  1. LOGINSUITE_HOME, as returned by lookup
//  2. Parent of the binary's directory (if binary is in <home>/bin/)
//  3. Current working directory
func Home(lookup func(string) (string, bool)) string {
	if v, ok := lookup(EnvHome); ok && v != "" {
		return v
	}

	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		if binDir := filepath.Dir(execPath); filepath.Base(binDir) == "bin" {
			return filepath.Dir(binDir)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// ReportsDir returns <home>/reports.
func ReportsDir(home string) string {
	return filepath.Join(home, reportsDirName)
}

// LogPath returns where the diagnostic log of a run goes.
func (c *Config) LogPath() string {
	return filepath.Join(c.OutputDir, logFileName)
}

// RunDir returns the artifact directory of one run.
func (c *Config) RunDir(runID string) string {
	return filepath.Join(c.OutputDir, runID)
}
