package processing

import (
	"context"

	"github.com/RMahshie/sparamgen/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository implements repository.Repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, filter *models.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Filter, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*models.Filter)
	return f, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit int) ([]*models.Filter, error) {
	args := m.Called(ctx, limit)
	filters, _ := args.Get(0).([]*models.Filter)
	return filters, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, filter *models.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

func (m *MockRepository) StoreTable(ctx context.Context, table *models.SParameterTable) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockRepository) GetLatestTable(ctx context.Context, filterID uuid.UUID) (*models.SParameterTable, error) {
	args := m.Called(ctx, filterID)
	table, _ := args.Get(0).(*models.SParameterTable)
	return table, args.Error(1)
}

// MockArtifactStore implements storage.ArtifactStore for testing
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockArtifactStore) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArtifactStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
