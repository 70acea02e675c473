package reportgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	reportgentypes "github.com/saps-platform/case-management/internal/core/datamodel/reportgen"
)

// ReportJob carries one queued narrative generation.
type ReportJob struct {
	ReportID int64
	Prompt   string
}

// ResultHandler receives the outcome of a generation job. The reports
// service implements it to persist the narrative and flip the report status.
type ResultHandler interface {
	HandleReportResult(reportID int64, narrative *reportgentypes.Narrative, genErr error)
}

type Worker struct {
	ID         int
	WorkerPool chan chan ReportJob
	JobChannel chan ReportJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan ReportJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan ReportJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(ReportJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing report job", "worker_id", w.ID, "report_id", job.ReportID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Client queues report generation jobs and runs them against the external
// text-generation API on a bounded worker pool, so a burst of ministerial
// report requests cannot pile up goroutines or saturate the upstream.
type Client struct {
	apiURL  string
	apiKey  string
	timeout time.Duration
	results ResultHandler
	logger  *slog.Logger

	jobQueue   chan ReportJob
	workerPool chan chan ReportJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type Config struct {
	APIURL       string
	APIKey       string
	Timeout      time.Duration
	MaxWorkers   int
	JobQueueSize int
}

func NewClient(config Config, results ResultHandler, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 50
	}

	client := &Client{
		apiURL:  config.APIURL,
		apiKey:  config.APIKey,
		timeout: config.Timeout,
		results: results,
		logger:  logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan ReportJob, jobQueueSize),
		workerPool: make(chan chan ReportJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {
		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processReportJob)
		}

		go c.dispatch()

		c.logger.Info("report generation worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:
			select {
			case jobChannel := <-c.workerPool:
				select {
				case jobChannel <- job:
				case <-c.ctx.Done():
					c.logger.Info("dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down report generation client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("report generation client shutdown complete")
}

// Enqueue queues a generation job. Returns an error when the queue is full
// so the caller can surface back-pressure instead of blocking the request.
func (c *Client) Enqueue(reportID int64, prompt string) error {
	job := ReportJob{
		ReportID: reportID,
		Prompt:   prompt,
	}

	select {
	case c.jobQueue <- job:
		c.logger.Info("report job queued",
			"report_id", reportID,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		c.logger.Warn("report job queue full, rejecting request",
			"report_id", reportID,
			"queue_capacity", cap(c.jobQueue))
		return fmt.Errorf("report generation queue full, please try again later")
	}
}

func (c *Client) processReportJob(job ReportJob) {
	c.logger.Info("processing report job", "report_id", job.ReportID)

	narrative, err := c.generateNarrative(job.Prompt)
	if err != nil {
		c.logger.Error("report generation failed", "report_id", job.ReportID, "error", err)
	}

	if c.results != nil {
		c.results.HandleReportResult(job.ReportID, narrative, err)
	}
}

func (c *Client) generateNarrative(prompt string) (*reportgentypes.Narrative, error) {
	req := &reportgentypes.GenerateRequest{
		Prompt: prompt,
		ResponseJSON: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title":             map[string]interface{}{"type": "string"},
				"executive_summary": map[string]interface{}{"type": "string"},
				"key_findings":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"recommendations":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"conclusion":        map[string]interface{}{"type": "string"},
			},
		},
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("generation API returned status %d", resp.StatusCode)
	}

	var narrative reportgentypes.Narrative
	if err := json.NewDecoder(resp.Body).Decode(&narrative); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Info("narrative generated", "title", narrative.Title)

	return &narrative, nil
}
