package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/sparamgen/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// FilterRepository defines the interface for filter session operations
type FilterRepository interface {
	Create(ctx context.Context, filter *models.Filter) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Filter, error)
	List(ctx context.Context, limit int) ([]*models.Filter, error)
	Update(ctx context.Context, filter *models.Filter) error
}

// TableRepository defines the interface for composed s-parameter tables
type TableRepository interface {
	StoreTable(ctx context.Context, table *models.SParameterTable) error
	GetLatestTable(ctx context.Context, filterID uuid.UUID) (*models.SParameterTable, error)
}

// Repository is the full persistence surface used by the filter service
type Repository interface {
	FilterRepository
	TableRepository
}
