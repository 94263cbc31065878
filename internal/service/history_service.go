package service

import (
	"context"
	"errors"
	"fmt"

	"go-promoter-inventory/internal/model"
	"go-promoter-inventory/internal/repository"

	"github.com/google/uuid"
)

type TransactionPage struct {
	Data     []model.StockTransaction `json:"data"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

type HistoryService interface {
	List(ctx context.Context, filter repository.TransactionFilter) (*TransactionPage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error)
}

type historyService struct {
	txRepo repository.TransactionRepository
}

func NewHistoryService(txRepo repository.TransactionRepository) HistoryService {
	return &historyService{txRepo: txRepo}
}

func (s *historyService) List(ctx context.Context, f repository.TransactionFilter) (*TransactionPage, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, invalid(fmt.Errorf("%w: %q", model.ErrUnknownAction, f.Type))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, invalid(errors.New("to is before from"))
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 50
	}
	if f.PageSize > 500 {
		f.PageSize = 500
	}

	rows, total, err := s.txRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("s.history.List -> %w", err)
	}
	if rows == nil {
		rows = []model.StockTransaction{}
	}
	return &TransactionPage{Data: rows, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (s *historyService) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransaction, error) {
	if id == uuid.Nil {
		return nil, invalid(errors.New("transaction id is required"))
	}
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("s.history.FindByID -> %w", err)
	}
	return tx, nil
}
