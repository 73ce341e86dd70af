// Package main hosts the lookahead CLI entrypoint and command graph.
//
// The Cobra-based command tree runs synthetic encoding sessions through the
// frame-type scheduler, inspects and prunes the decision journal, scaffolds
// configuration, tails the log file, and reports preflight checks.
// Configuration is resolved once per invocation; commands that do not need it
// opt out with the skipConfigLoad annotation.
package main
