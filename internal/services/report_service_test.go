package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/WiseOwlEnglish/testrun-service/internal/models"
)

func TestExportTestResults(t *testing.T) {
	repo := NewMockRepository()
	svc := NewReportService(repo, slog.Default())

	finishedAt := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	reason := models.EndReasonManual
	test := &models.Test{ID: 1, Title: "Unit 3 vocabulary", CreatedBy: "teacher-1"}
	attempts := []*models.TestAttempt{
		{
			ID:         "att-1",
			TestID:     1,
			LearnerID:  "learner-1",
			Status:     models.AttemptSubmitted,
			StartedAt:  finishedAt.Add(-20 * time.Minute),
			FinishedAt: &finishedAt,
			EndReason:  &reason,
			Score:      8,
			Percentage: 80,
			Passed:     true,
		},
		{
			ID:        "att-2",
			TestID:    1,
			LearnerID: "learner-2",
			Status:    models.AttemptTimedOut,
			StartedAt: finishedAt.Add(-10 * time.Minute),
			Score:     3,
		},
	}

	repo.test.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.attempt.On("GetByTest", mock.Anything, uint(1), mock.AnythingOfType("repositories.AttemptFilters")).
		Return(attempts, int64(len(attempts)), nil)

	data, err := svc.ExportTestResults(context.Background(), 1, "teacher-1")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Attempt ID", rows[0][0])
	assert.Equal(t, "Passed", rows[0][8])

	assert.Equal(t, "att-1", rows[1][0])
	assert.Equal(t, "learner-1", rows[1][1])
	assert.Equal(t, string(models.AttemptSubmitted), rows[1][2])
	assert.Equal(t, string(models.EndReasonManual), rows[1][5])

	assert.Equal(t, "att-2", rows[2][0])
	assert.Equal(t, string(models.AttemptTimedOut), rows[2][2])
	assert.Empty(t, rows[2][4])
}

func TestExportTestResultsRequiresCreator(t *testing.T) {
	repo := NewMockRepository()
	svc := NewReportService(repo, slog.Default())

	test := &models.Test{ID: 1, CreatedBy: "teacher-1"}
	repo.test.On("GetByID", mock.Anything, uint(1)).Return(test, nil)

	_, err := svc.ExportTestResults(context.Background(), 1, "teacher-2")
	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
	repo.attempt.AssertNotCalled(t, "GetByTest", mock.Anything, mock.Anything, mock.Anything)
}
