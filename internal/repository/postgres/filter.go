package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RMahshie/sparamgen/internal/repository"
	"github.com/RMahshie/sparamgen/pkg/models"
	"github.com/google/uuid"
)

// PostgresFilterRepository implements repository.Repository for PostgreSQL
type PostgresFilterRepository struct {
	db *sql.DB
}

// NewPostgresFilterRepository creates a new PostgreSQL filter repository
func NewPostgresFilterRepository(db *sql.DB) repository.Repository {
	return &PostgresFilterRepository{db: db}
}

// Create inserts a new filter record
func (r *PostgresFilterRepository) Create(ctx context.Context, filter *models.Filter) error {
	input, data, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO filters (id, name, input, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		filter.ID,
		filter.Name,
		input,
		data,
		filter.CreatedAt,
		filter.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert filter: %w", err)
	}
	return nil
}

// GetByID retrieves a filter by ID
func (r *PostgresFilterRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Filter, error) {
	query := `
		SELECT id, name, input, data, created_at, updated_at
		FROM filters
		WHERE id = $1`

	filter, err := scanFilter(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("filter %s: %w", id, repository.ErrNotFound)
	}
	return filter, err
}

// List returns the most recently updated filters
func (r *PostgresFilterRepository) List(ctx context.Context, limit int) ([]*models.Filter, error) {
	query := `
		SELECT id, name, input, data, created_at, updated_at
		FROM filters
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}
	defer rows.Close()

	var filters []*models.Filter
	for rows.Next() {
		filter, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return filters, rows.Err()
}

// Update replaces the input and curves of a filter
func (r *PostgresFilterRepository) Update(ctx context.Context, filter *models.Filter) error {
	input, data, err := marshalFilter(filter)
	if err != nil {
		return err
	}

	query := `
		UPDATE filters
		SET name = $1, input = $2, data = $3, updated_at = $4
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query, filter.Name, input, data, filter.UpdatedAt, filter.ID)
	if err != nil {
		return fmt.Errorf("failed to update filter: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("filter %s: %w", filter.ID, repository.ErrNotFound)
	}
	return nil
}

// StoreTable stores a composed s-parameter table
func (r *PostgresFilterRepository) StoreTable(ctx context.Context, table *models.SParameterTable) error {
	rows, err := json.Marshal(table.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal table rows: %w", err)
	}

	var fileKey sql.NullString
	if table.FileKey != "" {
		fileKey = sql.NullString{String: table.FileKey, Valid: true}
	}

	query := `
		INSERT INTO sparameter_tables (id, filter_id, filter_name, row_data, file_key, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		table.ID,
		table.FilterID,
		table.FilterName,
		string(rows),
		fileKey,
		table.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to insert s-parameter table: %w", err)
	}
	return nil
}

// GetLatestTable retrieves the most recent table of a filter
func (r *PostgresFilterRepository) GetLatestTable(ctx context.Context, filterID uuid.UUID) (*models.SParameterTable, error) {
	query := `
		SELECT id, filter_id, filter_name, row_data, file_key, generated_at
		FROM sparameter_tables
		WHERE filter_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`

	var table models.SParameterTable
	var rows []byte
	var fileKey sql.NullString

	err := r.db.QueryRowContext(ctx, query, filterID).Scan(
		&table.ID,
		&table.FilterID,
		&table.FilterName,
		&rows,
		&fileKey,
		&table.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table for filter %s: %w", filterID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(rows, &table.Rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table rows: %w", err)
	}
	if fileKey.Valid {
		table.FileKey = fileKey.String
	}
	return &table, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFilter(row scanner) (*models.Filter, error) {
	var filter models.Filter
	var input, data []byte

	err := row.Scan(
		&filter.ID,
		&filter.Name,
		&input,
		&data,
		&filter.CreatedAt,
		&filter.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(input, &filter.Input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal filter input: %w", err)
	}
	if len(data) > 0 {
		filter.Data = &models.NumericalData{}
		if err := json.Unmarshal(data, filter.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal filter data: %w", err)
		}
	}
	return &filter, nil
}

func marshalFilter(filter *models.Filter) (string, string, error) {
	input, err := json.Marshal(filter.Input)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal filter input: %w", err)
	}
	data, err := json.Marshal(filter.Data)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal filter data: %w", err)
	}
	return string(input), string(data), nil
}
