package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/logger"
)

// NpoHandler serves NPO CRUD. Mutations are gated on the admin role by the
// router; reads are public.
type NpoHandler struct {
	npos *service.NpoService
}

// NewNpoHandler creates an NPO handler
func NewNpoHandler(npos *service.NpoService) *NpoHandler {
	return &NpoHandler{npos: npos}
}

// Create stores a new NPO
func (h *NpoHandler) Create(c echo.Context) error {
	var req service.CreateNpoInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	npo, err := h.npos.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("NPO created", zap.Uint("npo_id", npo.ID), zap.String("name", npo.Name))
	return c.JSON(http.StatusCreated, npo)
}

// Update applies a partial NPO edit
func (h *NpoHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req service.UpdateNpoInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.ID = id

	npo, err := h.npos.Update(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromContext(c).Info("NPO updated", zap.Uint("npo_id", npo.ID))
	return c.JSON(http.StatusOK, npo)
}

// Get returns one NPO
func (h *NpoHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	npo, err := h.npos.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, npo)
}

// List returns all NPOs
func (h *NpoHandler) List(c echo.Context) error {
	npos, err := h.npos.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, npos)
}
