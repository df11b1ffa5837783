// cmd/worker: WhatsApp notification dispatcher, offer campaign and reports.
//
//	worker run                 loop until SIGINT/SIGTERM
//	worker once                run a single tick
//	worker reap                release stale SENDING claims
//	worker dlq [--recent N]    show dead letter lists
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leodymann/wi-api/internal/config"
	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/logger"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type deps struct {
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client
}

func main() {
	var envFile string

	root := &cobra.Command{
		Use:           "worker",
		Short:         "Notificações de cobrança via WhatsApp",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "arquivo .env carregado antes da configuração")

	load := func(ctx context.Context) (*deps, error) {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("env file %s: %w", envFile, err)
			}
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		logger.Setup(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.AutoMigrate)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		d := &deps{cfg: cfg, db: db}
		if cfg.RedisURL != "" {
			rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
			if err != nil {
				log.Warn().Err(err).Msg("worker: redis unavailable, dead letters and e-mail queue disabled")
			} else {
				d.rdb = rdb
			}
		}
		return d, nil
	}

	buildApp := func(ctx context.Context) (*worker.App, error) {
		d, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return worker.New(d.cfg, d.db, d.rdb)
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Executa o loop até receber SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "once",
		Short: "Executa um único ciclo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			for task, n := range app.Loop.Tick(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%d\n", task, n)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "reap",
		Short: "Libera envios presos em SENDING",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			n, err := app.Reaper.Reap(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released=%d\n", n)
			return nil
		},
	})

	var recent int64
	dlqCmd := &cobra.Command{
		Use:   "dlq",
		Short: "Mostra as filas de dead letter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if d.rdb == nil {
				return fmt.Errorf("dlq requires REDIS_URL")
			}
			dlq := worker.NewDeadLetters(d.rdb)
			queues := []string{worker.QueueEmail}
			for _, ch := range model.Channels {
				queues = append(queues, ch.Name)
			}
			out := cmd.OutOrStdout()
			for _, q := range queues {
				n, err := dlq.Length(cmd.Context(), q)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s%s: %d\n", worker.DLQPrefix, q, n)
				entries, err := dlq.Recent(cmd.Context(), q, recent)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "  %s tries=%d %s %s\n", e.FailedAt, e.Attempts, e.Payload, e.Reason)
				}
			}
			return nil
		},
	}
	dlqCmd.Flags().Int64Var(&recent, "recent", 5, "quantas entradas recentes listar por fila")
	root.AddCommand(dlqCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("worker: exiting")
		os.Exit(1)
	}
}
