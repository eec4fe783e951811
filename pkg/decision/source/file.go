package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tabular-hq/verdict/pkg/dmn"
	dmnxml "tabular-hq/verdict/pkg/dmn/xml"
)

// FileSource loads decision tables from DMN XML files on disk.
type FileSource struct {
	path     string
	tenantID string
	logger   *slog.Logger
}

// NewFileSource creates a new file-based decision source.
// The path can be either a single file or a directory.
// If it's a directory, all .dmn and .xml files will be loaded.
func NewFileSource(path, tenantID string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:     path,
		tenantID: tenantID,
		logger:   logger.With("component", "decision_source"),
	}
}

// Path returns the configured file or directory path.
func (s *FileSource) Path() string {
	return s.path
}

// LoadDecisions loads all decision drafts from the configured path. Identity
// fields on the drafts (id, version, timestamps) are unset; the lifecycle
// manager assigns them on create.
func (s *FileSource) LoadDecisions(ctx context.Context) ([]*dmn.Decision, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var drafts []*dmn.Decision

	if info.IsDir() {
		drafts, err = s.loadDirectory(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		drafts, err = s.loadFile(ctx, s.path)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("loaded decisions from source",
		"path", s.path,
		"decision_count", len(drafts),
	)

	return drafts, nil
}

// loadDirectory loads all DMN files from a directory tree. Files that fail
// to parse are skipped with a warning so one bad file cannot block the rest.
func (s *FileSource) loadDirectory(ctx context.Context) ([]*dmn.Decision, error) {
	var drafts []*dmn.Decision

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if info.IsDir() {
			return nil
		}
		if !isDMNFile(path) {
			return nil
		}

		fileDrafts, err := s.loadFile(ctx, path)
		if err != nil {
			s.logger.Warn("failed to load decision file, skipping",
				"path", path,
				"error", err,
			)
			return nil // Skip invalid files
		}

		drafts = append(drafts, fileDrafts...)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return drafts, nil
}

// loadFile loads every decision table from a single DMN file.
func (s *FileSource) loadFile(ctx context.Context, path string) ([]*dmn.Decision, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	drafts, parsed := dmnxml.ToCreateRequests(data, s.tenantID)
	if !parsed.OK() {
		return nil, fmt.Errorf("failed to parse DMN file %q: %s",
			path, strings.Join(parsed.Errors, "; "))
	}

	for _, warning := range parsed.Warnings {
		s.logger.Warn("DMN file warning",
			"path", path,
			"warning", warning,
		)
	}

	for _, draft := range drafts {
		s.logger.Debug("loaded decision table",
			"path", path,
			"decision_key", draft.DecisionKey,
			"hit_policy", draft.HitPolicy,
			"rule_count", draft.RuleCount,
		)
	}

	return drafts, nil
}

// isDMNFile reports whether the file name looks like a DMN document.
func isDMNFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dmn", ".xml":
		return true
	}
	return false
}
