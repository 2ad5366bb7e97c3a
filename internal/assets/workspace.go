// Package assets manages the lifetime of intermediate audio artifacts. Every
// request gets its own workspace directory so concurrent requests can never
// collide on file names, and the whole directory is removed once the response
// has been assembled (or the request has failed).
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultBaseDir = "audios"

// Store hands out request-scoped workspaces under a shared base directory.
type Store struct {
	baseDir   string
	keepFiles bool
	logger    *zap.Logger
}

// StoreConfig holds configuration for the asset store.
// All fields are optional:
// - BaseDir: Directory intermediate audio files live under (default: "audios")
// - KeepFiles: Skip cleanup so artifacts can be inspected (default: false)
type StoreConfig struct {
	BaseDir   string
	KeepFiles bool
}

// NewStoreConfigFromEnv creates a StoreConfig from environment variables
func NewStoreConfigFromEnv() StoreConfig {
	keep, _ := strconv.ParseBool(os.Getenv("AUDIO_KEEP_FILES"))
	return StoreConfig{
		BaseDir:   os.Getenv("AUDIO_DIR"),
		KeepFiles: keep,
	}
}

// NewStore creates the base directory if needed and returns a Store.
func NewStore(config StoreConfig, logger *zap.Logger) (*Store, error) {
	baseDir := config.BaseDir
	if baseDir == "" {
		baseDir = defaultBaseDir
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory %s: %w", baseDir, err)
	}

	return &Store{
		baseDir:   baseDir,
		keepFiles: config.KeepFiles,
		logger:    logger,
	}, nil
}

// NewWorkspace creates a fresh directory for one request's artifacts.
func (s *Store) NewWorkspace() (*Workspace, error) {
	dir := filepath.Join(s.baseDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return &Workspace{
		dir:       dir,
		keepFiles: s.keepFiles,
		logger:    s.logger,
	}, nil
}

// Workspace is a per-request arena of intermediate files. It is not safe for
// concurrent use; one request owns it.
type Workspace struct {
	dir       string
	keepFiles bool
	logger    *zap.Logger
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// WriteAsset writes data to a new uniquely named file and returns its path.
// The name embeds the prefix for traceability and a random suffix so rapid
// successive writes with the same prefix cannot collide.
func (w *Workspace) WriteAsset(prefix, ext string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s%s", prefix, uuid.NewString()[:8], ext)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		// Leave nothing half-written behind.
		os.Remove(path)
		return "", fmt.Errorf("failed to write asset %s: %w", name, err)
	}

	return path, nil
}

// Cleanup removes the workspace and everything in it, on every exit path.
// With KeepFiles set it only logs where the artifacts were left.
func (w *Workspace) Cleanup() {
	if w.keepFiles {
		w.logger.Info("Keeping audio artifacts", zap.String("dir", w.dir))
		return
	}

	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("Failed to remove workspace", zap.String("dir", w.dir), zap.Error(err))
	}
}
