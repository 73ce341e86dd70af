// Package preflight provides readiness checks for the filesystem paths the
// lookahead tools write to.
//
// The CLI "lookahead check" command prints every result, and "lookahead run"
// refuses to start when a check fails. Each check is gated by its config
// toggle so disabled features are skipped.
package preflight
