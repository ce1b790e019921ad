package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/checkia-backend/internal/app"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "checkia",
		Short:         "Checkia fact-checking backend",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables take precedence")

	var withWorker bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			role := app.RoleAPI
			if withWorker {
				role |= app.RoleWorker
			}
			return run(cmd.Context(), role)
		},
	}
	serve.Flags().BoolVar(&withWorker, "with-worker", true, "also run the job worker in this process")

	worker := &cobra.Command{
		Use:   "worker",
		Short: "Run the job worker only",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.RoleWorker)
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Migrate(cfg)
		},
	}

	root.AddCommand(serve, worker, migrate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (app.Config, error) {
	v, err := app.NewViper(cfgFile)
	if err != nil {
		return app.Config{}, err
	}
	return app.LoadConfig(v)
}

func run(ctx context.Context, role app.Role) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg, role)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}
	if role&app.RoleAPI != 0 {
		return a.Run(ctx)
	}
	a.Log.Info("Worker running")
	<-ctx.Done()
	return nil
}
