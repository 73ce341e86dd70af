// Package journal persists lookahead decisions in SQLite.
//
// Each encoding session records its scheduler settings and every decided
// run (head frame, run length, keyframe flag). A later pass opened with
// stat_read replays those decisions through Replay instead of analysing
// frames again. The database sits beside an advisory lock file so only one
// process writes a journal at a time.
package journal
