// Package clickhouse provides an append-only ClickHouse audit event store.
// It implements the pipeline's audit sink for deployments that need the
// audit trail queryable instead of a local JSONL file.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "priceproof",
		Username: "default",
		Password: "",
	}
}

// AuditStore writes audit events to ClickHouse. LogEvent is fire-and-forget:
// write failures are logged and swallowed, never surfaced to the pipeline.
type AuditStore struct {
	conn clickhouse.Conn
	cfg  *Config
	log  zerolog.Logger
}

// NewAuditStore connects to ClickHouse.
func NewAuditStore(cfg *Config, log zerolog.Logger) (*AuditStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &AuditStore{conn: conn, cfg: cfg, log: log}, nil
}

// Ping checks database connectivity.
func (s *AuditStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *AuditStore) Close() error {
	return s.conn.Close()
}

// InitSchema creates the audit table if it does not exist.
func (s *AuditStore) InitSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS audit_events (
			timestamp  DateTime64(3, 'UTC'),
			event_type LowCardinality(String),
			details    String
		) ENGINE = MergeTree()
		ORDER BY (event_type, timestamp)`

	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}
	return nil
}

// LogEvent implements api.AuditSink.
func (s *AuditStore) LogEvent(eventType string, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("audit payload marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.conn.Exec(ctx,
		"INSERT INTO audit_events (timestamp, event_type, details) VALUES (?, ?, ?)",
		time.Now().UTC(), eventType, string(payload),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("event_type", eventType).Msg("audit write failed")
	}
}
