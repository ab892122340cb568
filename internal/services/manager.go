package services

import (
	"log/slog"

	"github.com/WiseOwlEnglish/testrun-service/internal/events"
	"github.com/WiseOwlEnglish/testrun-service/internal/render"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
	"github.com/WiseOwlEnglish/testrun-service/internal/validator"
)

type serviceManager struct {
	testRun TestRunService
	grading GradingService
	report  ReportService
}

// NewServiceManager wires the services over shared dependencies: one
// repository, one session manager, one renderer registry, one publisher.
func NewServiceManager(
	repo repositories.Repository,
	sessions *session.Manager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	registry := render.NewRegistry()
	grading := NewGradingService(repo, logger)

	return &serviceManager{
		testRun: NewTestRunService(repo, sessions, registry, publisher, grading, logger, v),
		grading: grading,
		report:  NewReportService(repo, logger),
	}
}

func (m *serviceManager) TestRun() TestRunService { return m.testRun }
func (m *serviceManager) Grading() GradingService { return m.grading }
func (m *serviceManager) Report() ReportService   { return m.report }
