package handler

import (
	"net/http"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/gin-gonic/gin"
)

type PromissoriesHandler struct{ svc service.PromissoryService }

func NewPromissoriesHandler(svc service.PromissoryService) *PromissoriesHandler {
	return &PromissoriesHandler{svc: svc}
}

// Create godoc
// @Summary      Criar promissória avulsa
// @Tags         promissories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreatePromissoryRequest true "Promissória"
// @Success      201  {object} dto.PromissoryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/promissories [post]
func (h *PromissoriesHandler) Create(c *gin.Context) {
	var req dto.CreatePromissoryRequest
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
// @Summary      Listar promissórias
// @Tags         promissories
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "DRAFT | ISSUED | CANCELED | PAID"
// @Param        client_id query string false "UUID do cliente"
// @Success      200  {object} dto.PromissoryListResponse
// @Router       /v1/promissories [get]
func (h *PromissoriesHandler) List(c *gin.Context) {
	var filter dto.PromissoryFilter
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

func (h *PromissoriesHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Issue godoc
// @Summary      Emitir promissória
// @Tags         promissories
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da promissória"
// @Success      200  {object} dto.PromissoryResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/promissories/{id}/issue [post]
func (h *PromissoriesHandler) Issue(c *gin.Context) {
	resp, err := h.svc.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar promissória
// @Description  Cancela a promissória e as parcelas pendentes. Falha se alguma parcela já foi paga.
// @Tags         promissories
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da promissória"
// @Success      200  {object} dto.PromissoryResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/promissories/{id}/cancel [patch]
func (h *PromissoriesHandler) Cancel(c *gin.Context) {
	resp, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
