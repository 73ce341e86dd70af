package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSessionNotFound is returned when a session id has no journal entry.
var ErrSessionNotFound = errors.New("session not found")

// Settings captures the scheduler parameters a session ran with.
type Settings struct {
	Mode             string
	SyncLookahead    int
	ReorderDelay     int
	KeyintMax        int
	DecisionWindow   int
	AnalyzeKeyframes bool
	// ReplayOf names the session whose decisions this one replays.
	ReplayOf string
}

// RunRecord is one decided run.
type RunRecord struct {
	Seq           int
	HeadFrame     int64
	RunLength     int
	Keyframe      bool
	SceneCut      bool
	PropagateCost int64
}

// SessionSummary describes a journaled session with aggregate run counts.
type SessionSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Settings   Settings
	Runs       int
	Frames     int
	Keyframes  int
}

// BeginSession registers a new session.
func (s *Store) BeginSession(ctx context.Context, id string, settings Settings, started time.Time) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("session id is required")
	}
	var replayOf any
	if settings.ReplayOf != "" {
		replayOf = settings.ReplayOf
	}
	err := s.exec(ctx, `INSERT INTO sessions
		(id, started_at, mode, sync_lookahead, reorder_delay, keyint_max, decision_window, analyze_keyframes, replay_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, formatTime(started), settings.Mode, settings.SyncLookahead, settings.ReorderDelay,
		settings.KeyintMax, settings.DecisionWindow, boolToInt(settings.AnalyzeKeyframes), replayOf,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", id, err)
	}
	return nil
}

// RecordRun appends a decided run to a session.
func (s *Store) RecordRun(ctx context.Context, id string, rec RunRecord) error {
	err := s.exec(ctx, `INSERT INTO runs
		(session_id, seq, head_frame, run_length, keyframe, scene_cut, propagate_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Seq, rec.HeadFrame, rec.RunLength, boolToInt(rec.Keyframe), boolToInt(rec.SceneCut), rec.PropagateCost,
	)
	if err != nil {
		return fmt.Errorf("record run %d of session %s: %w", rec.Seq, id, err)
	}
	return nil
}

// FinishSession stamps the session end time.
func (s *Store) FinishSession(ctx context.Context, id string, finished time.Time) error {
	if err := s.exec(ctx, "UPDATE sessions SET finished_at = ? WHERE id = ?", formatTime(finished), id); err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return nil
}

const sessionSummaryQuery = `SELECT s.id, s.started_at, s.finished_at, s.mode, s.sync_lookahead, s.reorder_delay,
	s.keyint_max, s.decision_window, s.analyze_keyframes, s.replay_of,
	COUNT(r.seq), COALESCE(SUM(r.run_length + 1), 0), COALESCE(SUM(r.keyframe), 0)
	FROM sessions s LEFT JOIN runs r ON r.session_id = s.id`

// Sessions lists journaled sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, sessionSummaryQuery+" GROUP BY s.id ORDER BY s.started_at DESC, s.id")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		summary, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Session returns one session summary.
func (s *Store) Session(ctx context.Context, id string) (SessionSummary, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, sessionSummaryQuery+" WHERE s.id = ? GROUP BY s.id", id)
	summary, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionSummary{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return SessionSummary{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return summary, nil
}

// Runs returns the recorded runs of a session in decision order.
func (s *Store) Runs(ctx context.Context, id string) ([]RunRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT seq, head_frame, run_length, keyframe, scene_cut, propagate_cost
		FROM runs WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("list runs of session %s: %w", id, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec                RunRecord
			keyframe, sceneCut int
		)
		if err := rows.Scan(&rec.Seq, &rec.HeadFrame, &rec.RunLength, &keyframe, &sceneCut, &rec.PropagateCost); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Keyframe = keyframe != 0
		rec.SceneCut = sceneCut != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RemoveSession deletes a session and its runs.
func (s *Store) RemoveSession(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	var removed bool
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		removed = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("remove session %s: %w", id, err)
	}
	return removed, nil
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (SessionSummary, error) {
	var (
		summary              SessionSummary
		startedRaw           string
		finishedRaw          sql.NullString
		replayOf             sql.NullString
		analyze              int
		runs, frames, kframe int
	)
	if err := scanner.Scan(
		&summary.ID,
		&startedRaw,
		&finishedRaw,
		&summary.Settings.Mode,
		&summary.Settings.SyncLookahead,
		&summary.Settings.ReorderDelay,
		&summary.Settings.KeyintMax,
		&summary.Settings.DecisionWindow,
		&analyze,
		&replayOf,
		&runs,
		&frames,
		&kframe,
	); err != nil {
		return SessionSummary{}, err
	}
	summary.Settings.AnalyzeKeyframes = analyze != 0
	summary.Settings.ReplayOf = replayOf.String
	summary.Runs, summary.Frames, summary.Keyframes = runs, frames, kframe
	if started, err := parseTimeString(startedRaw); err == nil {
		summary.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			summary.FinishedAt = &finished
		}
	}
	return summary, nil
}
