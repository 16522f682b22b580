// Package fs implements a local filesystem snapshot sink.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bipwatch/crawler/internal/bip"
)

const filenameStamp = "20060102_150405"

// Config captures the parameters for the filesystem sink.
type Config struct {
	// Dir is the directory where snapshot files are written.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Sink writes scrape payloads to timestamped JSON files.
type Sink struct {
	dir   string
	clock bip.Clock
}

// New creates a filesystem-backed Sink.
func New(cfg Config, clock bip.Clock) (*Sink, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	info, err := os.Stat(cfg.Dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("snapshot path is not a directory")
		}
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.Dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", mkErr)
		}
	default:
		return nil, fmt.Errorf("stat snapshot directory: %w", err)
	}
	return &Sink{dir: cfg.Dir, clock: clock}, nil
}

// Save writes the payload as indented JSON and returns the file path.
func (s *Sink) Save(ctx context.Context, payload bip.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	name := fmt.Sprintf("bip_entries_%s.json", s.clock.Now().Format(filenameStamp))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
