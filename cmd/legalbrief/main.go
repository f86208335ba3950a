package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/graf262-max/legal-update-monitor/internal/app"
	"github.com/graf262-max/legal-update-monitor/internal/briefing"
	"github.com/graf262-max/legal-update-monitor/internal/config"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/scheduler"
	"github.com/graf262-max/legal-update-monitor/internal/logging"
	"github.com/graf262-max/legal-update-monitor/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "legalbrief",
		Short:         "Korean legal and regulatory update briefings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newBriefCmd(), newServeCmd(), newSourcesCmd())
	return root
}

func buildApp() (*app.Application, error) {
	cfg := config.Load()
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func newBriefCmd() *cobra.Command {
	var (
		formatFlag string
		testFlag   bool
		deliver    bool
	)
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Run one briefing and print it to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := briefing.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			if testFlag {
				deliver = false
			}
			now := time.Now().In(application.Config().Scheduler.Location())
			out, err := application.Pipeline().Run(cmd.Context(), now, format, deliver)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out.Body)
			return err
		},
	}
	cmd.Flags().StringVar(&formatFlag, "format", "text", "output format: json, html or text")
	cmd.Flags().BoolVar(&testFlag, "test", false, "dry run: never deliver, only print")
	cmd.Flags().BoolVar(&deliver, "deliver", false, "send the briefing via configured email/telegram channels")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily scheduler and the HTTP trigger endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			cfg := application.Config()
			logger := application.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cron := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
			err = cron.Start(ctx, func(now time.Time) {
				runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
				defer cancel()
				if _, err := application.Pipeline().Run(runCtx, now, briefing.FormatHTML, true); err != nil {
					logger.Error("scheduled briefing failed", "error", err)
				}
			})
			if err != nil {
				return err
			}
			logger.Info("scheduler started", "cron", cfg.Scheduler.CronExpression, "timezone", cfg.Scheduler.Timezone)

			srv := server.New(cfg.Server.Addr, application.Pipeline(), cfg.Scheduler.Location(), logger.With("component", "http"))
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
			return cron.Stop(shutdownCtx)
		},
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources and their wiring status",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			for _, st := range application.Sources() {
				state := "active"
				switch {
				case !st.Enabled:
					state = "disabled"
				case st.Skipped:
					state = "skipped"
				}
				line := fmt.Sprintf("%-18s %s", st.Source, state)
				if st.Reason != "" {
					line += " (" + st.Reason + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
