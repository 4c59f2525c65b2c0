// priceproof CLI - Price Change Evidence & Explanation Pipeline
//
// Usage:
//   priceproof watch --cycles 5 [options]
//   priceproof explain --evidence evidence.json --audience customer
//   priceproof db init
//   priceproof db history --limit 20
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"priceproof/db/clickhouse"
	"priceproof/db/postgres"
	"priceproof/internal/attribution"
	"priceproof/internal/evidence"
	"priceproof/internal/explain"
	"priceproof/internal/model"
	"priceproof/pkg/api"
	"priceproof/pkg/audit"
	"priceproof/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	platform.LoadDotenv()

	app := &cli.App{
		Name:    "priceproof",
		Usage:   "Price Change Evidence & Explanation Pipeline - auditable answers to why a price moved",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PRICEPROOF_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "audit-log",
				Value:   "audit_log.jsonl",
				Usage:   "Path to the JSONL audit log",
				EnvVars: []string{"PRICEPROOF_AUDIT_LOG"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "Postgres DSN for evidence persistence",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:    "clickhouse-audit",
				Value:   false,
				Usage:   "Also write audit events to ClickHouse",
				EnvVars: []string{"PRICEPROOF_CLICKHOUSE_AUDIT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "priceproof",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			watchCommand(),
			explainCommand(),
			dbCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildSink assembles the audit fan-out: JSONL file, process logger, and
// optionally ClickHouse. The returned closer is a no-op unless ClickHouse is
// attached.
func buildSink(c *cli.Context) (api.AuditSink, func(), error) {
	logger := platform.InitLogger(c.String("log-level"))

	sinks := []api.AuditSink{
		audit.NewFileSink(c.String("audit-log"), logger),
		audit.NewLoggerSink(logger),
	}
	closer := func() {}

	if c.Bool("clickhouse-audit") {
		store, err := clickhouse.NewAuditStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		if err := store.InitSchema(context.Background()); err != nil {
			store.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closer = func() { store.Close() }
	}

	return audit.NewMultiSink(sinks...), closer, nil
}

// =============================================================================
// WATCH COMMAND
// =============================================================================

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the simulated market and explain every material price change",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "cycles",
				Aliases: []string{"n"},
				Value:   5,
				Usage:   "Number of market cycles to simulate",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 2 * time.Second,
				Usage: "Pause between cycles",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 0,
				Usage: "Random seed for the market simulator (0 = time-based)",
			},
			&cli.BoolFlag{
				Name:  "no-explainer",
				Value: false,
				Usage: "Hide the model's explain capability to force fallback attribution",
			},
			&cli.StringFlag{
				Name:  "product-id",
				Value: "SKU-123",
				Usage: "Product identifier stamped on evidence",
			},
			&cli.StringFlag{
				Name:  "currency",
				Value: "INR",
				Usage: "Currency code stamped on evidence",
			},
			&cli.BoolFlag{
				Name:  "hide-exact-costs",
				Value: true,
				Usage: "Redact currency tokens in rendered text",
			},
			&cli.BoolFlag{
				Name:  "hide-supplier-names",
				Value: true,
				Usage: "Mask data-source labels in regulator text",
			},
			&cli.BoolFlag{
				Name:  "store",
				Value: false,
				Usage: "Persist generated evidence to Postgres",
			},
		},
		Action: runWatch,
	}
}

func runWatch(c *cli.Context) error {
	logger := platform.InitLogger(c.String("log-level"))

	sink, closeSink, err := buildSink(c)
	if err != nil {
		return err
	}
	defer closeSink()

	seed := c.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := model.NewSimulator(seed, sink)
	var mdl api.PricingModel = sim
	if c.Bool("no-explainer") {
		mdl = model.Opaque(sim)
	}

	flags := evidence.SafetyFlags{
		HideExactCosts:    c.Bool("hide-exact-costs"),
		HideSupplierNames: c.Bool("hide-supplier-names"),
	}

	validator := evidence.NewValidator(sink)
	builder := evidence.NewBuilder(c.String("product-id"), c.String("currency"), model.Version, model.DefaultConfidence, flags)
	tracker := attribution.NewTracker(attribution.NewComputer(mdl, sink), validator, builder, sink)
	explainer := explain.New(validator, sink)

	var store *postgres.Store
	if c.Bool("store") {
		dsn := c.String("postgres-dsn")
		if dsn == "" {
			return fmt.Errorf("--store requires --postgres-dsn or DATABASE_URL")
		}
		store, err = postgres.NewStore(dsn)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.InitSchema(c.Context); err != nil {
			return err
		}
	}

	// Prime the baseline with the initial state.
	tracker.Observe(sim.State())

	cycles := c.Int("cycles")
	for i := 1; i <= cycles; i++ {
		logger.Info().Int("cycle", i).Msg("simulating market")

		state := sim.SimulateMarketUpdate()
		ev := tracker.Observe(state)
		if ev == nil {
			logger.Info().Int("cycle", i).Msg("no explainable change detected")
			continue
		}

		printEvidence(ev)

		outputs := explainer.Generate(ev)
		fmt.Println("\n--- Customer Version ---")
		fmt.Println(outputs.CustomerText)
		fmt.Println("\n--- Regulator Version ---")
		fmt.Println(outputs.RegulatorText)
		fmt.Println()

		if store != nil {
			if err := store.SaveEvidence(c.Context, ev); err != nil {
				logger.Warn().Err(err).Str("event_id", ev.EventID).Msg("evidence persistence failed")
			} else {
				logger.Info().Str("event_id", ev.EventID).Msg("evidence persisted")
			}
		}

		if i < cycles {
			time.Sleep(c.Duration("interval"))
		}
	}

	return nil
}

func printEvidence(ev *evidence.Evidence) {
	fmt.Println()
	fmt.Println("EVIDENCE OBJECT PRODUCED")
	fmt.Printf("  Event:    %s\n", ev.EventID)
	fmt.Printf("  Price:    %s -> %s %s\n",
		decimal.NewFromFloat(ev.OldPrice).StringFixed(2),
		decimal.NewFromFloat(ev.NewPrice).StringFixed(2),
		ev.Currency)
	fmt.Printf("  Features:")
	for _, f := range ev.FeaturesUsed {
		fmt.Printf(" %s=%.2f", f.Name, f.Attribution)
	}
	fmt.Println()
}

// =============================================================================
// EXPLAIN COMMAND
// =============================================================================

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:  "explain",
		Usage: "Render explanations for an evidence JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "evidence",
				Aliases:  []string{"e"},
				Usage:    "Path to an evidence JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "audience",
				Aliases: []string{"a"},
				Value:   "both",
				Usage:   "Audience (customer, regulator, both)",
			},
		},
		Action: runExplain,
	}
}

func runExplain(c *cli.Context) error {
	raw, err := os.ReadFile(c.String("evidence"))
	if err != nil {
		return fmt.Errorf("failed to read evidence file: %w", err)
	}

	var ev evidence.Evidence
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("failed to parse evidence file: %w", err)
	}

	sink, closeSink, err := buildSink(c)
	if err != nil {
		return err
	}
	defer closeSink()

	validator := evidence.NewValidator(sink)
	outputs := explain.New(validator, sink).Generate(&ev)

	if outputs.Error != "" {
		fmt.Println(outputs.CustomerText)
		return fmt.Errorf("explanation refused: %s", outputs.Error)
	}

	switch c.String("audience") {
	case "customer":
		fmt.Println(outputs.CustomerText)
	case "regulator":
		fmt.Println(outputs.RegulatorText)
	default:
		fmt.Println("--- Customer Version ---")
		fmt.Println(outputs.CustomerText)
		fmt.Println("\n--- Regulator Version ---")
		fmt.Println(outputs.RegulatorText)
	}

	return nil
}

// =============================================================================
// DB COMMAND
// =============================================================================

func dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage evidence persistence",
		Subcommands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Initialize the Postgres evidence schema",
				Action: runDBInit,
			},
			{
				Name:  "history",
				Usage: "List stored evidence, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum rows to list",
					},
				},
				Action: runDBHistory,
			},
		},
	}
}

func openStore(c *cli.Context) (*postgres.Store, error) {
	dsn := c.String("postgres-dsn")
	if dsn == "" {
		return nil, fmt.Errorf("set --postgres-dsn or DATABASE_URL")
	}
	return postgres.NewStore(dsn)
}

func runDBInit(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitSchema(c.Context); err != nil {
		return err
	}
	fmt.Println("Evidence schema initialized.")
	return nil
}

func runDBHistory(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListEvidence(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No evidence stored yet.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  %s -> %s %s  confidence=%.2f  %s\n",
			rec.EventTime.Format(time.RFC3339),
			rec.ProductID,
			rec.OldPrice.StringFixed(2),
			rec.NewPrice.StringFixed(2),
			rec.Currency,
			rec.ConfidenceScore,
			rec.EventID,
		)
	}
	return nil
}
