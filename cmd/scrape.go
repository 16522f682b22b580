package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/attachments"
	"github.com/bipwatch/crawler/internal/bip"
	"github.com/bipwatch/crawler/internal/clock/system"
	"github.com/bipwatch/crawler/internal/config"
	collyfetcher "github.com/bipwatch/crawler/internal/fetcher/colly"
	"github.com/bipwatch/crawler/internal/id/uuid"
	"github.com/bipwatch/crawler/internal/listing"
	"github.com/bipwatch/crawler/internal/logging"
	"github.com/bipwatch/crawler/internal/metrics"
	"github.com/bipwatch/crawler/internal/pdftext"
	"github.com/bipwatch/crawler/internal/policy/ratelimit"
	"github.com/bipwatch/crawler/internal/publisher/webhook"
	"github.com/bipwatch/crawler/internal/scrape"
	sinkfs "github.com/bipwatch/crawler/internal/sink/fs"
)

const defaultConfigFile = "bipwatch.yaml"

// newScrapeCmd creates the 'scrape' subcommand. It runs one full pass over
// the configured sources and delivers the result.
func newScrapeCmd() *cobra.Command {
	var (
		outputPath string
		scrapeOnly bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape over all configured sources",
		Long: `Fetches the listing page of every configured source, extracts fresh
entries, enriches them with attachment text, and delivers the payload.
With --scrape-only the payload is printed to stdout instead of being
sent to the webhook.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, outputPath, scrapeOnly)
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "also write the payload JSON to this file")
	cmd.Flags().BoolVar(&scrapeOnly, "scrape-only", false, "print the payload to stdout and skip the webhook")

	return cmd
}

func runScrape(cmd *cobra.Command, outputPath string, scrapeOnly bool) error {
	cfgPath := cfgFile
	if cfgPath == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			cfgPath = defaultConfigFile
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development || devLogging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := cfg.RequestTimeout()
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   timeout,
	})
	enricher := attachments.New(fetcher, pdftext.New(logger), timeout, logger)
	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: cfg.Scraper.PerHostRPS})

	runner := scrape.New(scrape.Options{
		Extractors: map[bip.SourceKind]listing.Extractor{
			bip.KindFeed:            listing.NewFeed(fetcher, timeout, logger),
			bip.KindDynamicRegistry: listing.NewCascade(fetcher, timeout, logger),
			bip.KindGenericList:     listing.NewNewsList(fetcher, timeout, logger),
		},
		Enricher: enricher,
		Limiter:  limiter,
		Workers:  cfg.Scraper.EntryWorkers,
		Logger:   logger,
	})

	started := time.Now()
	entries := runner.Run(ctx, cfg.Sources)
	logger.Info("scrape finished",
		zap.Int("sources", len(cfg.Sources)),
		zap.Int("entries", len(entries)),
		zap.Duration("took", time.Since(started)))

	runID, err := uuid.New().NewID()
	if err != nil {
		return err
	}
	clk := system.New()
	payload := bip.Payload{
		RunID:       runID,
		GeneratedAt: clk.Now(),
		Entries:     entries,
		Instruction: cfg.Agent.Instruction,
	}
	if payload.Entries == nil {
		payload.Entries = []bip.Entry{}
	}

	sink, err := sinkfs.New(sinkfs.Config{Dir: cfg.Snapshots.Dir}, clk)
	if err != nil {
		return err
	}
	snapshotPath, err := sink.Save(ctx, payload)
	if err != nil {
		return err
	}
	logger.Info("snapshot written", zap.String("path", snapshotPath))

	if outputPath != "" {
		if err := writePayloadFile(outputPath, payload); err != nil {
			return err
		}
	}

	if scrapeOnly {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(payload)
	}

	if cfg.Agent.WebhookURL == "" {
		logger.Info("no webhook configured, snapshot is the final artifact")
		return nil
	}

	pub := webhook.New(webhook.Config{
		URL:          cfg.Agent.WebhookURL,
		APIKey:       cfg.Agent.APIKey,
		APIKeyHeader: cfg.Agent.APIKeyHeader,
	}, logger)
	if err := pub.Publish(ctx, payload); err != nil {
		// The snapshot on disk is the fallback artifact.
		logger.Warn("webhook delivery failed, payload preserved in snapshot",
			zap.String("snapshot", snapshotPath),
			zap.Error(err))
	}
	return nil
}

func writePayloadFile(path string, payload bip.Payload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
