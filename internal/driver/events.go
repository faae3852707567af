package driver

import "context"

// Stage is a file's position in the check pipeline.
type Stage uint8

const (
	StageQueued Stage = iota
	StageScanning
	StageParsing
	// StageDone means the file passed every enabled check.
	StageDone
	// StageBlocked means the guard found a directive or the parser rejected
	// the file.
	StageBlocked
	StageError // the file could not be loaded
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageScanning:
		return "scanning"
	case StageParsing:
		return "parsing"
	case StageDone:
		return "done"
	case StageBlocked:
		return "blocked"
	case StageError:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether no further events follow for the file.
func (s Stage) Terminal() bool {
	return s >= StageDone
}

// Event is a progress update for one file.
type Event struct {
	Path   string
	Stage  Stage
	Detail string
}

func emit(ctx context.Context, ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
