package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type Logs interface {
	// Len returns the number of items in the collection.
	Len() int

	// All returns a copy of all the observed logs.
	All() []observer.LoggedEntry

	// FilterMessage narrows the collection to entries with msg.
	FilterMessage(msg string) *observer.ObservedLogs
}

var _ Logs = (*observer.ObservedLogs)(nil)

// NewObserverLogger creates a logger that records entries for assertions.
func NewObserverLogger(level string) (*ZapLogger, Logs) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	core, logs := observer.New(lvl)
	return &ZapLogger{Logger: zap.New(core), level: lvl}, logs
}
