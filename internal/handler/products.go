package handler

import (
	"net/http"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler { return &ProductsHandler{svc: svc} }

// Create godoc
// @Summary      Cadastrar moto
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductRequest true "Produto"
// @Success      201  {object} dto.ProductResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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
// @Summary      Listar estoque
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "IN_STOCK | RESERVED | SOLD"
// @Param        q      query string false "Marca, modelo, placa ou chassi"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200  {object} dto.ProductListResponse
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
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

func (h *ProductsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddImage godoc
// @Summary      Adicionar imagem
// @Description  Registra a URL de uma imagem já armazenada. A de menor posição é a capa usada nas ofertas.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID do produto"
// @Param        body body dto.AddProductImageRequest true "Imagem"
// @Success      201  {object} dto.ProductResponse
// @Router       /v1/products/{id}/images [post]
func (h *ProductsHandler) AddImage(c *gin.Context) {
	var req dto.AddProductImageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddImage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
