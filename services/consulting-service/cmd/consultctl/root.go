package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/consultdesk/libs/config"
	"github.com/md-rashed-zaman/consultdesk/libs/db"
	"github.com/md-rashed-zaman/consultdesk/libs/grpcx"
	"github.com/md-rashed-zaman/consultdesk/libs/notify"
	"github.com/md-rashed-zaman/consultdesk/libs/runtime"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/analytics"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/booking"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/outbox"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/scheduling"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/seed"
	"github.com/md-rashed-zaman/consultdesk/services/consulting-service/internal/storage"
)

type rootOptions struct {
	configFile string
	fixture    string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "consultctl",
		Short:        "Operate the consulting service: schema, fixtures and offline checks",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadFile(opts.configFile)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "optional yaml/toml/json config file")
	root.PersistentFlags().StringVar(&opts.fixture, "fixture", "", "TOML fixture for offline commands")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newSnapshotCmd(opts),
		newAvailabilityCmd(opts),
		newSlotsCmd(opts),
		newHealthCmd(opts),
	)
	return root
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func (o *rootOptions) memoryStore() (*storage.Memory, error) {
	if o.fixture == "" {
		return nil, fmt.Errorf("--fixture is required")
	}
	fx, err := seed.LoadFile(o.fixture)
	if err != nil {
		return nil, err
	}
	mem := storage.NewMemory()
	fx.Apply(mem)
	return mem, nil
}

func openPool(ctx context.Context) (*db.Pool, error) {
	url, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, url, db.Options{MaxConns: 2})
}

func logger(w io.Writer) *slog.Logger {
	return runtime.NewLoggerTo(w, "consultctl", runtime.ParseLevel(config.String("LOG_LEVEL", "warn")))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the consulting schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := io.WriteString(cmd.OutOrStdout(), storage.Schema())
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := storage.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the DDL instead of applying it")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert fixture consultants and consultation types into DATABASE_URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.fixture == "" {
				return fmt.Errorf("--fixture is required")
			}
			fx, err := seed.LoadFile(opts.fixture)
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := fx.ApplyCatalog(ctx, storage.NewPostgres(pool, outbox.NewRepository())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d consultants, %d consultation types\n", len(fx.Consultants), len(fx.ConsultationTypes))
			return nil
		},
	}
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Compute the executive snapshot for a fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mem, err := opts.memoryStore()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			log := logger(cmd.ErrOrStderr())
			d := analytics.NewDispatcher(nil, notify.NewLogPublisher(log), log, 0)
			snap := analytics.NewService(mem, mem, d, log).ComputeExecutiveSnapshot(ctx)
			d.Wait()
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
}

func bookingService(opts *rootOptions, w io.Writer) (*booking.Service, error) {
	mem, err := opts.memoryStore()
	if err != nil {
		return nil, err
	}
	return booking.NewService(mem, mem, mem, logger(w)), nil
}

func newAvailabilityCmd(opts *rootOptions) *cobra.Command {
	var consultantID, date string
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Check whether a fixture consultant works on a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := bookingService(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			day, err := svc.CheckAvailability(ctx, consultantID, date)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"consultant_id": consultantID,
				"date":          date,
				"weekday":       day.WeekdayName(),
				"available":     day.Available,
			})
		},
	}
	cmd.Flags().StringVar(&consultantID, "consultant", "", "consultant id")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("consultant")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newSlotsCmd(opts *rootOptions) *cobra.Command {
	var (
		consultantID, date string
		duration           int
	)
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List open slots for a fixture consultant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := bookingService(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			slots, err := svc.ListOpenSlots(ctx, consultantID, date, duration)
			if err != nil {
				return err
			}
			for _, s := range slots {
				fmt.Fprintf(cmd.OutOrStdout(), "%s-%s\n", scheduling.FormatClock(s.Start), scheduling.FormatClock(s.End))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&consultantID, "consultant", "", "consultant id")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD")
	cmd.Flags().IntVar(&duration, "duration", scheduling.DefaultDurationMinutes, "slot length in minutes")
	_ = cmd.MarkFlagRequired("consultant")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var addr, service string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health service of a running consulting-service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := grpcx.NewClient(addr, grpcx.DialOptions{})
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := opts.context(cmd)
			defer cancel()
			resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.GetStatus().String())
			if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service %q is %s", service, resp.GetStatus())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC address")
	cmd.Flags().StringVar(&service, "service", "", "service name; empty checks the whole server")
	return cmd
}
