package handler

import (
	"errors"

	"locum-match/internal/delivery/http/dto"
	"locum-match/internal/delivery/http/middleware"
	"locum-match/internal/domain/run"
	"locum-match/internal/pkg/response"
	"locum-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RunHandler struct {
	shortTerm usecase.ShortTermMatchUsecase
	digest    usecase.WeeklyDigestUsecase
	queries   usecase.RunQueryUsecase
}

func NewRunHandler(shortTerm usecase.ShortTermMatchUsecase, digest usecase.WeeklyDigestUsecase, queries usecase.RunQueryUsecase) *RunHandler {
	return &RunHandler{shortTerm: shortTerm, digest: digest, queries: queries}
}

func (h *RunHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/runs")
	grp.Post("/short-term/:job_id", h.TriggerShortTerm)
	grp.Post("/digest", h.TriggerDigest)
	grp.Get("/pending", h.GetPendingRuns)
	grp.Get("/:run_id", h.GetRun)
	grp.Get("/:run_id/results", h.GetResults)
}

func (h *RunHandler) TriggerShortTerm(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job id", nil, err)
	}

	m, err := h.shortTerm.RunForJob(c.Context(), jobID)
	if err != nil {
		return mapRunUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Match run completed", dto.NewMatchRunResponse(m))
}

func (h *RunHandler) TriggerDigest(c fiber.Ctx) error {
	m, err := h.digest.Run(c.Context())
	if err != nil {
		return mapRunUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Digest run completed", dto.NewMatchRunResponse(m))
}

func (h *RunHandler) GetRun(c fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("run_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid run id", nil, err)
	}

	m, err := h.queries.GetRun(c.Context(), runID)
	if err != nil {
		return mapRunUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchRunResponse(m))
}

func (h *RunHandler) GetResults(c fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("run_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid run id", nil, err)
	}

	rows, err := h.queries.GetResults(c.Context(), runID)
	if err != nil {
		return mapRunUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResultResponses(rows))
}

func (h *RunHandler) GetPendingRuns(c fiber.Ctx) error {
	rawType := c.Query("type")
	var runType run.Type
	if rawType != "" {
		parsed, err := run.ParseType(rawType)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid run type", nil, err)
		}
		runType = parsed
	}

	runs, err := h.queries.GetPendingRuns(c.Context(), runType)
	if err != nil {
		return mapRunUsecaseError(err)
	}

	out := make([]dto.MatchRunResponse, 0, len(runs))
	for _, m := range runs {
		out = append(out, dto.NewMatchRunResponse(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapRunUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrRunNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match run not found", nil, err)
	case errors.Is(err, usecase.ErrNotShortTerm):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Job does not qualify as short-term", nil, err)
	case errors.Is(err, usecase.ErrRunLocked):
		return middleware.NewAppError(fiber.StatusConflict, "Another run is already in progress", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
