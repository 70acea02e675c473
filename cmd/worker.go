package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saps-platform/case-management/internal/core/events"
	"github.com/saps-platform/case-management/internal/rbac"
	"github.com/saps-platform/case-management/internal/reportgen"
	"github.com/saps-platform/case-management/internal/reports"
	reportsPostgres "github.com/saps-platform/case-management/internal/reports/postgres"
	"github.com/saps-platform/case-management/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker pools for various services",
	Long:  `Start and manage worker pools for report generation and event handling.`,
}

// Report generation worker command
var reportWorkerCmd = &cobra.Command{
	Use:   "reports",
	Short: "Start report generation worker pool",
	Long:  `Start the worker pool that generates ministerial report narratives`,
	Run: func(cmd *cobra.Command, args []string) {
		startReportWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	apiURL       string
	apiKey       string
)

func startReportWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize gorm: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(lg)
	reportRepo := reportsPostgres.NewReportRepository(gormDB)
	reportService := reports.NewService(reportRepo, rbac.NewPolicy(nil), nil, eventBus, lg)

	// Use command line flags if provided, otherwise use config values
	genConfig := reportgen.Config{
		APIURL:       getStringFlag(apiURL, config.ReportGen.APIURL),
		APIKey:       getStringFlag(apiKey, config.ReportGen.APIKey),
		Timeout:      config.ReportGen.Timeout,
		MaxWorkers:   getIntFlag(maxWorkers, config.ReportGen.MaxWorkers),
		JobQueueSize: getIntFlag(jobQueueSize, config.ReportGen.QueueSize),
	}

	lg.Info("starting report generation worker",
		"max_workers", genConfig.MaxWorkers,
		"job_queue_size", genConfig.JobQueueSize,
		"api_url", genConfig.APIURL)

	client := reportgen.NewClient(genConfig, reportService, lg)
	reportService.SetGenerator(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("report worker is running. Press Ctrl+C to stop.")

	// wait for shutdown signal
	sig := <-sigChan
	lg.Info("received signal, shutting down report worker", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		client.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		lg.Info("report worker pool shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)

	activityEventTypes := []string{
		events.EventTypeCaseCreated,
		events.EventTypeStatusChanged,
		events.EventTypeNoteAdded,
		events.EventTypeCaseAssigned,
		events.EventTypeReportReady,
	}
	for _, eventType := range activityEventTypes {
		eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			lg.Info("received case event",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"payload", event.Payload())
			return nil
		})
	}

	lg.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down event bus", "signal", sig)
	lg.Info("event bus shutdown complete")
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reportWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	reportWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	reportWorkerCmd.Flags().StringVar(&apiURL, "api-url", "", "Generation API URL (overrides config)")
	reportWorkerCmd.Flags().StringVar(&apiKey, "api-key", "", "Generation API key (overrides config)")

	workerCmd.AddCommand(reportWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
