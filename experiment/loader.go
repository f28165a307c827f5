package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Loader reads the experiment config document and caches the decoded result
// keyed on the file's modification time, so edits are picked up without a
// process restart.
type Loader struct {
	path         string
	rootOverride string

	mu     sync.Mutex
	cached *Config
	mtime  time.Time
}

// NewLoader returns a loader for the document at path. rootOverride, when
// non-empty, replaces the derived project root for relative image dirs.
func NewLoader(path, rootOverride string) *Loader {
	return &Loader{path: path, rootOverride: rootOverride}
}

// Load returns the current config, re-reading the file when its mtime has
// changed since the last load.
func (l *Loader) Load() (*Config, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil && info.ModTime().Equal(l.mtime) {
		return l.cached, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	l.cached = cfg
	l.mtime = info.ModTime()
	return cfg, nil
}

// ProjectRoot is the base directory for relative image paths: the explicit
// override if set, otherwise the config file's directory, walking up one
// level when that directory is literally named "config".
func (l *Loader) ProjectRoot() string {
	if l.rootOverride != "" {
		return l.rootOverride
	}
	abs, err := filepath.Abs(l.path)
	if err != nil {
		abs = l.path
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == "config" {
		return filepath.Dir(dir)
	}
	return dir
}
