package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"talent-ledger/internal/delivery/http/dto"
	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/domain/pool"
	"talent-ledger/internal/pkg/response"
	"talent-ledger/internal/usecase"
)

type PoolHandler struct {
	uc usecase.PoolUsecase
}

func NewPoolHandler(uc usecase.PoolUsecase) *PoolHandler {
	return &PoolHandler{uc: uc}
}

func (h *PoolHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Post("/:id/pause", h.Pause)
	r.Post("/:id/resume", h.Resume)
	r.Post("/:id/applications", h.Apply)
	r.Delete("/:id/applications", h.Withdraw)
	r.Get("/:id/applications", h.ListApplications)
	r.Post("/:id/selection", h.Select)
	r.Post("/:id/close", h.Close)
}

func (h *PoolHandler) Create(c fiber.Ctx) error {
	var req dto.CreatePoolRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	reqs := make([]pool.SkillRequirement, 0, len(req.Requirements))
	for _, r := range req.Requirements {
		reqs = append(reqs, pool.SkillRequirement{Category: r.Category, MinimumLevel: r.MinimumLevel})
	}

	p, err := h.uc.Create(c.Context(), middleware.AccountIDFromCtx(c), usecase.CreatePoolInput{
		Title:        req.Title,
		Description:  req.Description,
		JobType:      req.JobType,
		Requirements: reqs,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		StakeAmount:  req.StakeAmount,
		Deadline:     req.Deadline,
		Location:     req.Location,
		IsRemote:     req.IsRemote,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.FromPool(p))
}

func (h *PoolHandler) List(c fiber.Ctx) error {
	params := usecase.PoolListParams{
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  fiber.Query(c, "limit", 0),
		Offset: fiber.Query(c, "offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("company")); raw != "" {
		company, err := uuid.Parse(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid company id", nil, err)
		}
		params.Company = &company
	}

	pools, err := h.uc.List(c.Context(), params)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromPools(pools))
}

func (h *PoolHandler) Get(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	p, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromPool(p))
}

func (h *PoolHandler) Pause(c fiber.Ctx) error {
	return h.flip(c, h.uc.Pause)
}

func (h *PoolHandler) Resume(c fiber.Ctx) error {
	return h.flip(c, h.uc.Resume)
}

func (h *PoolHandler) flip(c fiber.Ctx, op func(ctx context.Context, caller uuid.UUID, poolID int64) error) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}
	if err := op(c.Context(), middleware.AccountIDFromCtx(c), id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PoolHandler) Apply(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	var req dto.ApplyRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.Apply(c.Context(), middleware.AccountIDFromCtx(c), usecase.ApplyInput{
		PoolID:        id,
		CredentialIDs: req.CredentialIDs,
		StakeAmount:   req.StakeAmount,
		CoverLetter:   req.CoverLetter,
		Portfolio:     req.Portfolio,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.FromApplication(a))
}

func (h *PoolHandler) Withdraw(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	if err := h.uc.Withdraw(c.Context(), middleware.AccountIDFromCtx(c), id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PoolHandler) ListApplications(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	apps, err := h.uc.ListApplications(c.Context(), middleware.AccountIDFromCtx(c), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromApplications(apps))
}

func (h *PoolHandler) Select(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	var req dto.SelectCandidateRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if req.Candidate == uuid.Nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Candidate is required", nil, nil)
	}

	if err := h.uc.Select(c.Context(), middleware.AccountIDFromCtx(c), id, req.Candidate); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PoolHandler) Close(c fiber.Ctx) error {
	id, ok := poolIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid pool id", nil, nil)
	}

	var req dto.ClosePoolRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.Close(c.Context(), middleware.AccountIDFromCtx(c), id, req.Reason); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func poolIDFromParams(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
