package service

import (
	"context"
	"strings"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/repository"
)

// ProductService covers the minimal catalog the sales and offer flows need.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	AddImage(ctx context.Context, id string, req dto.AddProductImageRequest) (*dto.ProductResponse, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	const op = "product.create"
	if req.CostPrice.IsNegative() || !req.SalePrice.IsPositive() {
		return nil, apperr.InvalidArgument(op, "preços inválidos")
	}
	p := &model.Product{
		Brand:                 strings.TrimSpace(req.Brand),
		Model:                 strings.TrimSpace(req.Model),
		Year:                  req.Year,
		Plate:                 normalizePlate(req.Plate),
		Chassi:                strings.ToUpper(strings.TrimSpace(req.Chassi)),
		Km:                    req.Km,
		Color:                 strings.TrimSpace(req.Color),
		CostPrice:             money.Round2(req.CostPrice),
		SalePrice:             money.Round2(req.SalePrice),
		Status:                model.ProductInStock,
		PurchaseSellerName:    req.PurchaseSellerName,
		PurchaseSellerPhone:   digitsPtr(req.PurchaseSellerPhone),
		PurchaseSellerCPF:     digitsPtr(req.PurchaseSellerCPF),
		PurchaseSellerAddress: req.PurchaseSellerAddress,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	const op = "product.get"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "produto")
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = productToResponse(&products[i])
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) AddImage(ctx context.Context, id string, req dto.AddProductImageRequest) (*dto.ProductResponse, error) {
	const op = "product.add_image"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, uid); err != nil {
		return nil, notFound(err, op, "produto")
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, apperr.InvalidArgument(op, "url da imagem é obrigatória")
	}
	if err := s.repo.AddImage(ctx, &model.ProductImage{ProductID: uid, URL: url, Position: req.Position}); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	p, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "produto")
	}
	resp := productToResponse(p)
	return &resp, nil
}

func normalizePlate(plate *string) *string {
	if plate == nil {
		return nil
	}
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(*plate), "-", ""))
	if v == "" {
		return nil
	}
	return &v
}

func digitsPtr(s *string) *string {
	if s == nil {
		return nil
	}
	d := money.Digits(*s)
	if d == "" {
		return nil
	}
	return &d
}
