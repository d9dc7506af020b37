package repository

import (
	"context"
	"database/sql"
	"errors"
	"flowdata/internal/models"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Projects
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	query := `INSERT INTO projects (name, description, created_at, updated_at)
	          VALUES (:name, :description, :created_at, :updated_at)`
	id, err := s.insert(ctx, query, project)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	project.ID = id
	return nil
}

// Dimensions
func (s *Store) GetDimensionByID(ctx context.Context, id int64) (*models.Dimension, error) {
	var dim models.Dimension
	query := "SELECT id, project_id, name, description FROM dimensions WHERE id = ? LIMIT 1"
	if err := sqlx.GetContext(ctx, s.db, &dim, query, id); err != nil {
		return nil, err
	}
	return &dim, nil
}

// GetOrCreateDimension looks up a dimension by (project, name) and creates it
// when missing. The bool reports whether a row was inserted.
func (s *Store) GetOrCreateDimension(ctx context.Context, projectID int64, name string) (*models.Dimension, bool, error) {
	var dim models.Dimension
	query := "SELECT id, project_id, name, description FROM dimensions WHERE project_id = ? AND name = ? ORDER BY id LIMIT 1"
	err := sqlx.GetContext(ctx, s.db, &dim, query, projectID, name)
	if err == nil {
		return &dim, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("get dimension %q: %w", name, err)
	}

	dim = models.Dimension{ProjectID: projectID, Name: name}
	id, err := s.insert(ctx, `INSERT INTO dimensions (project_id, name, description)
	          VALUES (:project_id, :name, :description)`, &dim)
	if err != nil {
		return nil, false, fmt.Errorf("create dimension %q: %w", name, err)
	}
	dim.ID = id
	return &dim, true, nil
}

// Units
func (s *Store) GetUnitBySymbol(ctx context.Context, symbol string) (*models.Unit, error) {
	var unit models.Unit
	query := "SELECT id, name, symbol, dimension_id FROM units WHERE symbol = ? LIMIT 1"
	if err := sqlx.GetContext(ctx, s.db, &unit, query, symbol); err != nil {
		return nil, err
	}
	return &unit, nil
}

// GetOrCreateUnit looks a unit up by its globally unique symbol. name and
// dimensionID are only used when the unit has to be created.
func (s *Store) GetOrCreateUnit(ctx context.Context, symbol, name string, dimensionID int64) (*models.Unit, bool, error) {
	unit, err := s.GetUnitBySymbol(ctx, symbol)
	if err == nil {
		return unit, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("get unit %q: %w", symbol, err)
	}

	unit = &models.Unit{Name: name, Symbol: symbol, DimensionID: dimensionID}
	id, err := s.insert(ctx, `INSERT INTO units (name, symbol, dimension_id)
	          VALUES (:name, :symbol, :dimension_id)`, unit)
	if err != nil {
		return nil, false, fmt.Errorf("create unit %q: %w", symbol, err)
	}
	unit.ID = id
	return unit, true, nil
}

func (s *Store) UpdateUnitDimension(ctx context.Context, unitID, dimensionID int64) error {
	query := "UPDATE units SET dimension_id = ? WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, dimensionID, unitID); err != nil {
		return fmt.Errorf("update unit %d dimension: %w", unitID, err)
	}
	return nil
}

// Compartments
func (s *Store) GetOrCreateCompartment(ctx context.Context, projectID int64, name string, parentID sql.NullInt64) (*models.ElementaryFlowCompartment, bool, error) {
	var comp models.ElementaryFlowCompartment
	var err error
	if parentID.Valid {
		query := `SELECT id, project_id, name, description, parent_compartment_id FROM elementary_flow_compartments
		          WHERE project_id = ? AND name = ? AND parent_compartment_id = ? ORDER BY id LIMIT 1`
		err = sqlx.GetContext(ctx, s.db, &comp, query, projectID, name, parentID.Int64)
	} else {
		query := `SELECT id, project_id, name, description, parent_compartment_id FROM elementary_flow_compartments
		          WHERE project_id = ? AND name = ? AND parent_compartment_id IS NULL ORDER BY id LIMIT 1`
		err = sqlx.GetContext(ctx, s.db, &comp, query, projectID, name)
	}
	if err == nil {
		return &comp, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("get compartment %q: %w", name, err)
	}

	comp = models.ElementaryFlowCompartment{ProjectID: projectID, Name: name, ParentCompartmentID: parentID}
	id, err := s.insert(ctx, `INSERT INTO elementary_flow_compartments (project_id, name, description, parent_compartment_id)
	          VALUES (:project_id, :name, :description, :parent_compartment_id)`, &comp)
	if err != nil {
		return nil, false, fmt.Errorf("create compartment %q: %w", name, err)
	}
	comp.ID = id
	return &comp, true, nil
}

func (s *Store) ListCompartments(ctx context.Context, projectID int64) ([]models.ElementaryFlowCompartment, error) {
	var comps []models.ElementaryFlowCompartment
	query := `SELECT id, project_id, name, description, parent_compartment_id FROM elementary_flow_compartments
	          WHERE project_id = ? ORDER BY id`
	if err := sqlx.SelectContext(ctx, s.db, &comps, query, projectID); err != nil {
		return nil, fmt.Errorf("list compartments: %w", err)
	}
	return comps, nil
}
