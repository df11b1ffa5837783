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

type ClientService interface {
	Create(ctx context.Context, req dto.ClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id string) (*dto.ClientResponse, error)
	Update(ctx context.Context, id string, req dto.ClientRequest) (*dto.ClientResponse, error)
	List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Create(ctx context.Context, req dto.ClientRequest) (*dto.ClientResponse, error) {
	const op = "client.create"
	c := &model.Client{}
	if err := applyClient(op, c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func (s *clientService) Get(ctx context.Context, id string) (*dto.ClientResponse, error) {
	const op = "client.get"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "cliente")
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func (s *clientService) Update(ctx context.Context, id string, req dto.ClientRequest) (*dto.ClientResponse, error) {
	const op = "client.update"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "cliente")
	}
	if err := applyClient(op, c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func (s *clientService) List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClientResponse, len(clients))
	for i := range clients {
		data[i] = clientToResponse(&clients[i])
	}
	return &dto.ClientListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// applyClient copies the request onto c. Phone and CPF are kept as digits.
func applyClient(op string, c *model.Client, req dto.ClientRequest) error {
	phone := money.Digits(req.Phone)
	if len(phone) < 10 {
		return apperr.InvalidArgument(op, "telefone inválido")
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Phone = phone
	c.CPF = nil
	if req.CPF != nil {
		cpf := money.Digits(*req.CPF)
		if cpf != "" {
			if len(cpf) != 11 {
				return apperr.InvalidArgument(op, "cpf deve ter 11 dígitos")
			}
			c.CPF = &cpf
		}
	}
	c.Address = req.Address
	c.Notes = req.Notes
	return nil
}
