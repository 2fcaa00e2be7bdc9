package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the directories the binaries write to, resolved against the
// executable location rather than the working directory.
type Paths struct {
	ExecutableDir  string
	LogsDir        string
	OutputDir      string
	VocabularyFile string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return PathsFrom(filepath.Dir(exe)), nil
}

// PathsFrom lays out the application paths under dir.
func PathsFrom(dir string) *Paths {
	return &Paths{
		ExecutableDir:  dir,
		LogsDir:        filepath.Join(dir, DefaultLogsDir),
		OutputDir:      filepath.Join(dir, DefaultOutputDir),
		VocabularyFile: filepath.Join(dir, DefaultVocabularyFile),
	}
}

// EnsureDirectories creates the writable directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.LogsDir, p.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// Resolve makes a relative path absolute against the executable directory.
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.ExecutableDir, path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("logs", p.LogsDir),
			slog.String("output", p.OutputDir),
		),
		slog.String("vocabulary_file", p.VocabularyFile))
}
