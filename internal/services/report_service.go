package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportTestResults renders every finished attempt of a test into an Excel
// workbook. Only the test's creator may export.
func (s *reportService) ExportTestResults(ctx context.Context, testID uint, requesterID string) ([]byte, error) {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	if test.CreatedBy != requesterID {
		return nil, NewPermissionError(requesterID, fmt.Sprint(testID), "test", "export", "not the test creator")
	}

	attempts, _, err := s.repo.Attempt().GetByTest(ctx, testID, repositories.AttemptFilters{
		SortBy:    "started_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Attempt ID", "Learner ID", "Status", "Started At", "Finished At",
		"End Reason", "Score", "Percentage", "Passed",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := attemptToRow(attempt)
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported test results",
		"test_id", testID,
		"attempts", len(attempts))

	return buf.Bytes(), nil
}

func attemptToRow(attempt *models.TestAttempt) []interface{} {
	finished := ""
	if attempt.FinishedAt != nil {
		finished = attempt.FinishedAt.Format("2006-01-02 15:04:05")
	}
	reason := ""
	if attempt.EndReason != nil {
		reason = string(*attempt.EndReason)
	}
	return []interface{}{
		attempt.ID,
		attempt.LearnerID,
		string(attempt.Status),
		attempt.StartedAt.Format("2006-01-02 15:04:05"),
		finished,
		reason,
		attempt.Score,
		attempt.Percentage,
		attempt.Passed,
	}
}
