// Package audit provides audit sink implementations for the evidence
// pipeline. Every sink is fire-and-forget: a failing sink never blocks or
// fails the cycle that emitted the event.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"priceproof/pkg/api"
)

// Entry is the audit event envelope written by every sink.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details"`
}

// FileSink appends audit entries to a JSONL file.
type FileSink struct {
	mu      sync.Mutex
	logFile string
	log     zerolog.Logger
}

// NewFileSink creates a JSONL file sink.
func NewFileSink(path string, log zerolog.Logger) *FileSink {
	return &FileSink{logFile: path, log: log}
}

// LogEvent implements api.AuditSink.
func (s *FileSink) LogEvent(eventType string, details map[string]any) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Details:   details,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("audit file open failed")
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("audit write failed")
	}
}

// LoggerSink mirrors audit events to the process logger.
type LoggerSink struct {
	log zerolog.Logger
}

func NewLoggerSink(log zerolog.Logger) *LoggerSink {
	return &LoggerSink{log: log}
}

// LogEvent implements api.AuditSink.
func (s *LoggerSink) LogEvent(eventType string, details map[string]any) {
	s.log.Info().Str("event_type", eventType).Interface("details", details).Msg("audit event")
}

// MultiSink fans one event out to several sinks.
type MultiSink struct {
	sinks []api.AuditSink
}

func NewMultiSink(sinks ...api.AuditSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// LogEvent implements api.AuditSink.
func (s *MultiSink) LogEvent(eventType string, details map[string]any) {
	for _, sink := range s.sinks {
		sink.LogEvent(eventType, details)
	}
}

// NopSink discards all events. Used when no audit destination is configured.
type NopSink struct{}

// LogEvent implements api.AuditSink.
func (NopSink) LogEvent(string, map[string]any) {}
