package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/saps-platform/case-management/internal"
	"github.com/saps-platform/case-management/internal/casefile"
	reportgentypes "github.com/saps-platform/case-management/internal/core/datamodel/reportgen"
	"github.com/saps-platform/case-management/internal/core/events"
	"github.com/saps-platform/case-management/internal/rbac"
)

// Generator queues narrative generation; implemented by reportgen.Client.
type Generator interface {
	Enqueue(reportID int64, prompt string) error
}

// Service aggregates case statistics and drives ministerial report
// generation. Narratives arrive asynchronously through HandleReportResult.
type Service struct {
	repo      Repository
	policy    *rbac.Policy
	generator Generator
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, policy *rbac.Policy, generator Generator, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		policy:    policy,
		generator: generator,
		bus:       bus,
		logger:    logger,
	}
}

// SetGenerator binds the narrative generator after construction. The
// generator needs this service as its result handler, so wiring happens in
// two steps at startup.
func (s *Service) SetGenerator(g Generator) {
	s.generator = g
}

// Stats returns the aggregate case picture. Provincial Ministers are pinned
// to their own province, everyone else picks freely.
func (s *Service) Stats(actor casefile.Actor, filter StatsFilter) (*Stats, error) {
	province := s.scopedProvince(actor, filter.Province)

	start := filter.PeriodStart
	end := filter.PeriodEnd
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}

	stats, err := s.repo.AggregateStats(province, start, end)
	if err != nil {
		s.logger.Error("failed to aggregate stats", "error", err, "province", province)
		return nil, err
	}
	return stats, nil
}

// GenerateReport validates access, snapshots statistics and queues the
// narrative job. The report row is created in pending state immediately so
// the caller can poll it.
func (s *Service) GenerateReport(actor casefile.Actor, dto GenerateReportDTO) (*Report, error) {
	if !s.policy.Can(actor.Role, rbac.CanGenerateReports) {
		s.logger.Warn("report generation denied", "user_id", actor.ID, "role", actor.Role)
		return nil, internal.ErrPermissionDenied
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	province := s.scopedProvince(actor, dto.Province)

	stats, err := s.repo.AggregateStats(province, dto.PeriodStart, dto.PeriodEnd)
	if err != nil {
		s.logger.Error("failed to aggregate stats for report", "error", err, "province", province)
		return nil, err
	}

	report := &Report{
		Name:         dto.Name,
		Province:     province,
		PeriodStart:  dto.PeriodStart,
		PeriodEnd:    dto.PeriodEnd,
		RequestedBy:  actor.FullName,
		ReportStatus: ReportStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(report); err != nil {
		s.logger.Error("failed to create report", "error", err)
		return nil, err
	}

	prompt := BuildPrompt(dto.Name, province, dto.PeriodStart, dto.PeriodEnd, stats)
	if err := s.generator.Enqueue(report.ID, prompt); err != nil {
		report.ReportStatus = ReportStatusFailed
		report.FailureReason = err.Error()
		if updateErr := s.repo.Update(report); updateErr != nil {
			s.logger.Error("failed to mark report as failed", "error", updateErr, "report_id", report.ID)
		}
		return nil, internal.NewExternalError("report generation unavailable", internal.ErrCodeReportGenFailed, err)
	}

	s.logger.Info("report generation queued",
		"report_id", report.ID,
		"name", report.Name,
		"province", province,
		"user_id", actor.ID)

	return report, nil
}

// HandleReportResult implements reportgen.ResultHandler; it runs on a worker
// goroutine when the external generation finishes.
func (s *Service) HandleReportResult(reportID int64, narrative *reportgentypes.Narrative, genErr error) {
	report, err := s.repo.GetByID(reportID)
	if err != nil {
		s.logger.Error("report not found for generation result", "error", err, "report_id", reportID)
		return
	}

	now := time.Now()
	if genErr != nil {
		report.ReportStatus = ReportStatusFailed
		report.FailureReason = genErr.Error()
	} else {
		report.ReportStatus = ReportStatusCompleted
		report.Title = narrative.Title
		report.ExecutiveSummary = narrative.ExecutiveSummary
		report.KeyFindings = narrative.KeyFindings
		report.Recommendations = narrative.Recommendations
		report.Conclusion = narrative.Conclusion
	}
	report.CompletedAt = &now

	if err := s.repo.Update(report); err != nil {
		s.logger.Error("failed to store generation result", "error", err, "report_id", reportID)
		return
	}

	if genErr == nil && s.bus != nil {
		event := events.NewReportReadyEvent(report.ID, report.Province, report.RequestedBy)
		if err := s.bus.Publish(context.Background(), event); err != nil {
			s.logger.Error("failed to publish report ready event", "error", err, "report_id", reportID)
		}
	}

	s.logger.Info("report generation finished",
		"report_id", reportID,
		"status", report.ReportStatus)
}

// GetReport fetches one report, applying province scoping.
func (s *Service) GetReport(actor casefile.Actor, reportID int64) (*Report, error) {
	if !s.policy.Can(actor.Role, rbac.CanGenerateReports) {
		return nil, internal.ErrPermissionDenied
	}

	report, err := s.repo.GetByID(reportID)
	if err != nil {
		return nil, err
	}

	if scoped := s.scopedProvince(actor, ""); scoped != AllProvinces && scoped != "" && report.Province != scoped {
		return nil, internal.NewNotFoundError("Report not found", internal.ErrCodeCaseNotFound)
	}

	return report, nil
}

// ListReports returns the newest reports.
func (s *Service) ListReports(actor casefile.Actor, limit int) ([]*Report, error) {
	if !s.policy.Can(actor.Role, rbac.CanGenerateReports) {
		return nil, internal.ErrPermissionDenied
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.ListRecent(limit)
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		return nil, err
	}

	if scoped := s.scopedProvince(actor, ""); scoped != AllProvinces && scoped != "" {
		filtered := make([]*Report, 0, len(list))
		for _, r := range list {
			if r.Province == scoped {
				filtered = append(filtered, r)
			}
		}
		return filtered, nil
	}

	return list, nil
}

func (s *Service) scopedProvince(actor casefile.Actor, requested string) string {
	if actor.Role == rbac.RoleProvincialMinister &&
		!s.policy.Can(actor.Role, rbac.CanViewAllProvinces) &&
		actor.Province != "" {
		return actor.Province
	}
	if requested == "" {
		return AllProvinces
	}
	return requested
}

// BuildPrompt renders the statistics into the instruction sent to the text
// generation service.
func BuildPrompt(name, province string, start, end time.Time, stats *Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a professional %s for South African Police Services (SAPS).\n\n", name)
	fmt.Fprintf(&b, "Date Range: %s to %s\n", start.Format("02 Jan 2006"), end.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Province: %s\n\n", province)

	fmt.Fprintf(&b, "Statistics:\n")
	fmt.Fprintf(&b, "- Total Cases: %d\n", stats.Total)
	fmt.Fprintf(&b, "- Solved Cases: %d (%.1f%% clearance rate)\n", stats.Solved, stats.ClearanceRate)
	fmt.Fprintf(&b, "- Under Investigation: %d\n", stats.UnderInvestigation)
	fmt.Fprintf(&b, "- Critical Priority: %d\n\n", stats.Critical)

	fmt.Fprintf(&b, "Crime Type Distribution:\n")
	for _, line := range sortedCountLines(stats.ByType) {
		b.WriteString(line)
	}

	if province == AllProvinces {
		fmt.Fprintf(&b, "\nProvince Distribution:\n")
		for _, line := range sortedCountLines(stats.ByProvince) {
			b.WriteString(line)
		}
	}

	b.WriteString("\nCreate a detailed, professional report with:\n")
	b.WriteString("1. Executive Summary\n")
	b.WriteString("2. Key Findings\n")
	b.WriteString("3. Recommendations\n")
	b.WriteString("4. Conclusion")

	return b.String()
}

func sortedCountLines(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = fmt.Sprintf("- %s: %d cases\n", key, counts[key])
	}
	return lines
}
