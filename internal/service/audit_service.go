package service

import (
	"context"

	"vitrina-autos/internal/domain"
	"vitrina-autos/internal/repository"
)

type AuditService interface {
	GetRecentActivities(ctx context.Context, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error)
	GetEntityHistory(ctx context.Context, entityType, entityID string, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error)
}

type auditService struct {
	auditRepo repository.AuditLogRepository
}

func NewAuditService(auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) GetRecentActivities(ctx context.Context, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error) {
	logs, total, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total)
	return &resp, nil
}

func (s *auditService) GetEntityHistory(ctx context.Context, entityType, entityID string, params domain.PaginationParams) (*domain.PaginatedResponse[domain.AuditLog], error) {
	logs, total, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, params)
	if err != nil {
		return nil, err
	}
	resp := domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total)
	return &resp, nil
}
