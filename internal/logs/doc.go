// Package logs reads back the scheduler's log file.
//
// Tail returns the most recent lines, optionally only those tagged with one
// session id, and Follow streams lines appended after a byte offset until the
// context ends. Both understand the console and JSON formats written by
// internal/logging.
package logs
