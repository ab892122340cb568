package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WiseOwlEnglish/testrun-service/internal/services"
	"github.com/WiseOwlEnglish/testrun-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// ExportTestResults downloads a test's attempt results as an Excel workbook
// @Summary Export test results
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param test_id path uint true "Test ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/tests/{test_id}/results [get]
func (h *ReportHandler) ExportTestResults(c *gin.Context) {
	requesterID, ok := RequireUserID(c)
	if !ok {
		return
	}
	testID := ParseUintIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Exporting test results", "test_id", testID)

	data, err := h.reportService.ExportTestResults(c.Request.Context(), testID, requesterID)
	if err != nil {
		var permissionError *services.PermissionError
		switch {
		case errors.As(err, &permissionError):
			c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
		case services.IsNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
		default:
			h.LogError(c, err, "Failed to export test results")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
		}
		return
	}

	filename := fmt.Sprintf("test_%d_results.xlsx", testID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
