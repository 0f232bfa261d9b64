package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// ScanConfig selects documents under a root directory.
type ScanConfig struct {
	Root       string
	Recursive  bool // descend into sub-directories (vendor folders)
	SkipHidden bool
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanDirectory walks cfg.Root and returns the paths of documents with an allowed
// extension in lexical order, so every run visits files in the same sequence.
func ScanDirectory(cfg ScanConfig, logger *slog.Logger) ([]string, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var paths []string
	var stats DirStats

	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == cfg.Root {
				return walkErr
			}
			logger.Warn("ingest.scan.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if d.IsDir() {
			if path == cfg.Root {
				return nil
			}
			if !cfg.Recursive || (cfg.SkipHidden && IsHidden(path)) {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if cfg.SkipHidden && IsHidden(path) {
			stats.Skipped++
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			logger.Debug("ingest.scan.unsupported", "path", path)
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", cfg.Root, err)
	}

	sort.Strings(paths)
	logger.Info("ingest.scan.ok",
		"root", cfg.Root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return paths, stats, nil
}
