package handler

import (
	"net/http"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/gin-gonic/gin"
)

type InstallmentsHandler struct{ svc service.InstallmentService }

func NewInstallmentsHandler(svc service.InstallmentService) *InstallmentsHandler {
	return &InstallmentsHandler{svc: svc}
}

// List godoc
// @Summary      Listar parcelas
// @Tags         installments
// @Produce      json
// @Security     BearerAuth
// @Param        status        query string false "PENDING | PAID | CANCELED"
// @Param        promissory_id query string false "UUID da promissória"
// @Param        due_from      query string false "YYYY-MM-DD"
// @Param        due_to        query string false "YYYY-MM-DD"
// @Success      200  {object} dto.InstallmentListResponse
// @Router       /v1/installments [get]
func (h *InstallmentsHandler) List(c *gin.Context) {
	var filter dto.InstallmentFilter
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

// Pay godoc
// @Summary      Pagar parcela
// @Description  Marca a parcela como paga, registra atraso e multa, e quita promissória e venda quando for a última. Pagar de novo devolve a parcela sem alterações.
// @Tags         installments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true  "UUID da parcela"
// @Param        body body dto.PayInstallmentRequest false "Valor pago e observação"
// @Success      200  {object} dto.InstallmentResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/installments/{id}/pay [post]
func (h *InstallmentsHandler) Pay(c *gin.Context) {
	var req dto.PayInstallmentRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Pay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
