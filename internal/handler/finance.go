package handler

import (
	"net/http"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/gin-gonic/gin"
)

type FinanceHandler struct{ svc service.FinanceService }

func NewFinanceHandler(svc service.FinanceService) *FinanceHandler { return &FinanceHandler{svc: svc} }

// Create godoc
// @Summary      Lançar conta a pagar
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateFinanceRequest true "Conta"
// @Success      201  {object} dto.FinanceResponse
// @Router       /v1/finance [post]
func (h *FinanceHandler) Create(c *gin.Context) {
	var req dto.CreateFinanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar contas
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        status   query string false "PENDING | PAID | CANCELED"
// @Param        due_from query string false "YYYY-MM-DD"
// @Param        due_to   query string false "YYYY-MM-DD"
// @Success      200  {object} dto.FinanceListResponse
// @Router       /v1/finance [get]
func (h *FinanceHandler) List(c *gin.Context) {
	var filter dto.FinanceFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FinanceHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Editar conta
// @Description  Mudanças de status seguem PENDING -> PAID | CANCELED.
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID da conta"
// @Param        body body dto.UpdateFinanceRequest true "Campos alterados"
// @Success      200  {object} dto.FinanceResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/finance/{id} [put]
func (h *FinanceHandler) Update(c *gin.Context) {
	var req dto.UpdateFinanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary      Pagar conta
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da conta"
// @Success      200  {object} dto.FinanceResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/finance/{id}/pay [post]
func (h *FinanceHandler) Pay(c *gin.Context) {
	resp, err := h.svc.Pay(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
