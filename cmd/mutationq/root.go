package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/velmie/mutationq"
	"github.com/velmie/mutationq/amqp"
	"github.com/velmie/mutationq/cmd/mutationq/internal/config"
	"github.com/velmie/mutationq/prommetrics"
)

// processorFactory builds the processor used by drain and relay.
type processorFactory func(cfg config.Config, logger *slog.Logger) (mutationq.Processor, func() error, error)

// amqpProcessor connects lazily, so drain and relay start even while RabbitMQ is unreachable;
// entries simply stay queued until a dial succeeds.
func amqpProcessor(cfg config.Config, logger *slog.Logger) (mutationq.Processor, func() error, error) {
	publisher := amqp.NewReconnector(cfg.AMQPURL, amqp.WithExchange(cfg.AMQPExchange), amqp.WithLogger(logger))

	return publisher, publisher.Close, nil
}

type app struct {
	cfg          config.Config
	logger       *slog.Logger
	newProcessor processorFactory
}

func newRootCmd(cfg config.Config) *cobra.Command {
	return newRootCmdWith(cfg, amqpProcessor)
}

func newRootCmdWith(cfg config.Config, factory processorFactory) *cobra.Command {
	a := &app{cfg: cfg, newProcessor: factory}

	root := &cobra.Command{
		Use:           "mutationq",
		Short:         "Inspect and replay an offline mutation queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = setupLogger(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Driver, "driver", cfg.Driver, "Store driver: sqlite, mysql, postgres or nats")
	flags.StringVar(&a.cfg.DSN, "dsn", cfg.DSN, "Database path, DSN or NATS URL")
	flags.StringVar(&a.cfg.EntryTable, "entry-table", cfg.EntryTable, "Table or bucket holding queue entries")
	flags.StringVar(&a.cfg.BlobTable, "blob-table", cfg.BlobTable, "Table or bucket holding upload blobs")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&a.cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: TEXT or JSON")

	root.AddCommand(
		a.listCmd(),
		a.countCmd(),
		a.removeCmd(),
		a.schemaCmd(),
		a.drainCmd(),
		a.relayCmd(),
		a.sweepCmd(),
	)

	return root
}

// withQueue opens the configured backend for the duration of fn.
func (a *app) withQueue(ctx context.Context, fn func(q *mutationq.Queue, blobs *mutationq.BlobStore) error, opts ...mutationq.Option) (err error) {
	b, err := openBackend(ctx, backendConfig{
		driver:     a.cfg.Driver,
		dsn:        a.cfg.DSN,
		entryTable: a.cfg.EntryTable,
		blobTable:  a.cfg.BlobTable,
	}, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, b.close())
	}()

	opts = append([]mutationq.Option{mutationq.WithLogger(a.logger)}, opts...)
	q, err := mutationq.NewQueue(b.entries, opts...)
	if err != nil {
		return err
	}
	blobs, err := mutationq.NewBlobStore(b.blobs)
	if err != nil {
		return err
	}

	return fn(q, blobs)
}

func (a *app) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print pending entries in replay order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, _ *mutationq.BlobStore) error {
				entries, err := q.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSONLines(cmd.OutOrStdout(), entries)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSEQ\tCREATED\tKIND\tTARGET")
				for _, entry := range entries {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
						entry.ID, entry.Seq, entry.CreatedAt.Format(time.RFC3339Nano), entry.Kind(), target(entry.Op))
				}

				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one stored record per line")

	return cmd
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of pending entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, _ *mutationq.BlobStore) error {
				count, err := q.Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)

				return nil
			})
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Discard entries that can never be replayed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, ids []string) error {
			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, _ *mutationq.BlobStore) error {
				for _, id := range ids {
					if err := q.Remove(cmd.Context(), id); err != nil {
						return err
					}
					a.logger.Info("entry removed", "id", id)
				}

				return nil
			})
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the DDL for the entry and blob tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, table := range []string{a.cfg.EntryTable, a.cfg.BlobTable} {
				ddl, err := schemaFor(a.cfg.Driver, table)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ddl)
			}

			return nil
		},
	}
}

func (a *app) drainCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Publish pending entries to RabbitMQ once, stopping at the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor, closeProcessor, err := a.newProcessor(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeProcessor(); err != nil {
					a.logger.Warn("close processor failed", "err", err)
				}
			}()

			var failure error
			onFailure := func(_ context.Context, entry mutationq.Entry, err error) {
				failure = fmt.Errorf("entry %s: %w", entry.ID, err)
			}

			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, _ *mutationq.BlobStore) error {
				if err := q.Drain(cmd.Context(), processor); err != nil {
					return err
				}
				count, err := q.Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pending %d\n", count)
				if failure != nil {
					return fmt.Errorf("drain halted: %w", failure)
				}

				return nil
			}, mutationq.WithProcessorTimeout(timeout), mutationq.WithErrorHandler(onFailure))
		},
	}
	cmd.Flags().StringVar(&a.cfg.AMQPURL, "amqp-url", a.cfg.AMQPURL, "RabbitMQ URL")
	cmd.Flags().StringVar(&a.cfg.AMQPExchange, "exchange", a.cfg.AMQPExchange, "Topic exchange to publish to")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-entry publish timeout (0 disables)")

	return cmd
}

func (a *app) relayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Keep draining to RabbitMQ on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			processor, closeProcessor, err := a.newProcessor(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeProcessor(); err != nil {
					a.logger.Warn("close processor failed", "err", err)
				}
			}()

			reg := prometheus.NewRegistry()
			metrics := prommetrics.New(reg, "")
			if a.cfg.MetricsAddress != "" {
				srv := &http.Server{
					Addr:              a.cfg.MetricsAddress,
					Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server failed", "err", err)
					}
				}()
				defer func() {
					_ = srv.Close()
				}()
			}

			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, _ *mutationq.BlobStore) error {
				relay := mutationq.NewRelay(q, processor, mutationq.WithPollInterval(a.cfg.PollInterval))
				a.logger.Info("relay started", "driver", a.cfg.Driver, "poll_interval", a.cfg.PollInterval)

				return relay.Run(cmd.Context())
			}, mutationq.WithMetrics(metrics))
		},
	}
	cmd.Flags().StringVar(&a.cfg.AMQPURL, "amqp-url", a.cfg.AMQPURL, "RabbitMQ URL")
	cmd.Flags().StringVar(&a.cfg.AMQPExchange, "exchange", a.cfg.AMQPExchange, "Topic exchange to publish to")
	cmd.Flags().DurationVar(&a.cfg.PollInterval, "poll-interval", a.cfg.PollInterval, "Delay between drains")
	cmd.Flags().StringVar(&a.cfg.MetricsAddress, "metrics-addr", a.cfg.MetricsAddress, "Serve Prometheus metrics on this address")

	return cmd
}

func (a *app) sweepCmd() *cobra.Command {
	var (
		once       bool
		checkEvery time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sweep-blobs",
		Short: "Delete upload blobs that no pending entry references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withQueue(cmd.Context(), func(q *mutationq.Queue, blobs *mutationq.BlobStore) error {
				sweeper, err := mutationq.NewBlobSweeper(q, blobs, mutationq.BlobSweeperConfig{
					Retention:  a.cfg.BlobRetention,
					CheckEvery: checkEvery,
					Logger:     a.logger,
				})
				if err != nil {
					return err
				}

				if once {
					result, err := sweeper.Ensure(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "scanned %d deleted %d\n", result.Scanned, result.Deleted)

					return nil
				}

				if err := sweeper.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}

				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&a.cfg.BlobRetention, "retention", a.cfg.BlobRetention, "Keep unreferenced blobs younger than this")
	cmd.Flags().DurationVar(&checkEvery, "check-every", time.Hour, "How often to sweep")
	cmd.Flags().BoolVar(&once, "once", false, "Sweep once and exit")

	return cmd
}
