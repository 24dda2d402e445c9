package handler

import (
	"errors"

	"locum-match/internal/delivery/http/middleware"
	"locum-match/internal/pkg/response"
	"locum-match/internal/reporting"
	"locum-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reports usecase.ReportUsecase
}

func NewReportHandler(reports usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/runs/:run_id/report", h.GetReport)
}

// GetReport streams the rendered report instead of wrapping it in the JSON
// envelope, so a csv report downloads as csv.
func (h *ReportHandler) GetReport(c fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("run_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid run id", nil, err)
	}

	format := c.Query("format")
	if format != "" && format != reporting.FormatCSV && format != reporting.FormatJSON {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid report format", nil, nil)
	}

	rep, err := h.reports.BuildForRun(c.Context(), runID, format)
	if err != nil {
		if errors.Is(err, usecase.ErrRunNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Match run not found", nil, err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}

	switch rep.Format {
	case reporting.FormatCSV:
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="match-report-`+runID.String()+`.csv"`)
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	}
	return c.Status(fiber.StatusOK).Send(rep.Content)
}
