package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cosme/crawler/internal/config"
	"cosme/crawler/internal/container"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("Application exited with error: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "crawler [primary-category]",
		Short: "Crawl the cosme.net product catalog",
		Long: "Crawl the cosme.net product catalog and write one record per product.\n" +
			"Pass a primary category name to crawl only that branch; omit it or pass \"all\" to crawl everything.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := ""
			if len(args) == 1 {
				selected = args[0]
			}
			return run(cmd.Context(), configPath, selected)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (default ./config.yaml)")
	cmd.Flags().String("sink", "", "record sink: csv, postgres, sqlite or redis")
	cmd.Flags().String("out", "", "directory for the CSV output")
	cmd.Flags().Int("concurrency", 0, "listing pages fetched at once (1-5)")
	_ = viper.BindPFlag("output.sink", cmd.Flags().Lookup("sink"))
	_ = viper.BindPFlag("output.dir", cmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("crawler.max_concurrency", cmd.Flags().Lookup("concurrency"))

	return cmd
}

func run(ctx context.Context, configPath, selected string) error {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}

	log.Info("Starting cosme crawler...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level %q, keeping %s", cfg.Log.Level, log.GetLevel())
	}
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Errorf("❌ %v", err)
		}
	}()

	report, err := app.Run(ctx, selected)
	if report != nil {
		report.Log()
	}
	if err != nil {
		return err
	}

	log.Info("Application finished successfully")
	return nil
}
