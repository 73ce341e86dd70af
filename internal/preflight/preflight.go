package preflight

import (
	"path/filepath"

	"lookahead/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}

	if cfg.Journal.Enabled {
		results = append(results,
			CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path)),
			CheckJournalLock(cfg.Journal.Path),
		)
	}

	if cfg.Logging.File != "" {
		results = append(results, CheckDirectoryAccess("Log directory", filepath.Dir(cfg.Logging.File)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
