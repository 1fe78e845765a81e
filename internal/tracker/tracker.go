// Package tracker reads issues and their status history from the
// extraction database or from a JSON snapshot file.
package tracker

import (
	"github.com/trackline/trackline/internal/contract"
)

// NewSource builds the issue source selected by the configuration.
// A snapshot file takes precedence over the SQL backend.
func NewSource(cfg *contract.Config) (contract.IssueSource, error) {
	if cfg.TrackerFile != "" {
		return NewFileSource(cfg.TrackerFile, cfg.Source)
	}
	return NewSQLSource(cfg.Source, cfg.TrackerBackend, cfg.TrackerDBConnect)
}
