package repository

import (
	"context"
	"flowdata/internal/models"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func (s *Store) CreateConservedEntity(ctx context.Context, entity *models.ConservedEntity) error {
	query := `INSERT INTO conserved_entities (project_id, name, short_name, molar_mass)
	          VALUES (:project_id, :name, :short_name, :molar_mass)`
	id, err := s.insert(ctx, query, entity)
	if err != nil {
		return fmt.Errorf("create conserved entity %q: %w", entity.Name, err)
	}
	entity.ID = id
	return nil
}

func (s *Store) ListConservedEntities(ctx context.Context, projectID int64) ([]models.ConservedEntity, error) {
	var entities []models.ConservedEntity
	query := "SELECT id, project_id, name, short_name, molar_mass FROM conserved_entities WHERE project_id = ? ORDER BY id"
	if err := sqlx.SelectContext(ctx, s.db, &entities, query, projectID); err != nil {
		return nil, fmt.Errorf("list conserved entities: %w", err)
	}
	return entities, nil
}

func (s *Store) CreateTransformableEntity(ctx context.Context, entity *models.TransformableEntity) error {
	query := `INSERT INTO transformable_entities (project_id, name, short_name)
	          VALUES (:project_id, :name, :short_name)`
	id, err := s.insert(ctx, query, entity)
	if err != nil {
		return fmt.Errorf("create transformable entity %q: %w", entity.Name, err)
	}
	entity.ID = id
	return nil
}

func (s *Store) ListTransformableEntities(ctx context.Context, projectID int64) ([]models.TransformableEntity, error) {
	var entities []models.TransformableEntity
	query := "SELECT id, project_id, name, short_name FROM transformable_entities WHERE project_id = ? ORDER BY id"
	if err := sqlx.SelectContext(ctx, s.db, &entities, query, projectID); err != nil {
		return nil, fmt.Errorf("list transformable entities: %w", err)
	}
	return entities, nil
}

func (s *Store) CreateGood(ctx context.Context, good *models.Good) error {
	query := `INSERT INTO goods (project_id, name, description, reference_unit_id)
	          VALUES (:project_id, :name, :description, :reference_unit_id)`
	id, err := s.insert(ctx, query, good)
	if err != nil {
		return fmt.Errorf("create good %q: %w", good.Name, err)
	}
	good.ID = id
	return nil
}

func (s *Store) CreateProcess(ctx context.Context, process *models.Process) error {
	query := `INSERT INTO processes (project_id, name, description)
	          VALUES (:project_id, :name, :description)`
	id, err := s.insert(ctx, query, process)
	if err != nil {
		return fmt.Errorf("create process %q: %w", process.Name, err)
	}
	process.ID = id
	return nil
}

// ListProcesses returns the project's processes in creation order.
func (s *Store) ListProcesses(ctx context.Context, projectID int64) ([]models.Process, error) {
	var processes []models.Process
	query := "SELECT id, project_id, name, description FROM processes WHERE project_id = ? ORDER BY id"
	if err := sqlx.SelectContext(ctx, s.db, &processes, query, projectID); err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	return processes, nil
}

// Composition and containment edges
func (s *Store) CreateTransformableContainConserved(ctx context.Context, edge *models.TransformableEntityContainConservedEntity) error {
	query := `INSERT INTO transformable_entity_conserved_entities (transformable_entity_id, conserved_entity_id, unit_id, ratio)
	          VALUES (:transformable_entity_id, :conserved_entity_id, :unit_id, :ratio)`
	id, err := s.insert(ctx, query, edge)
	if err != nil {
		return fmt.Errorf("create composition %d/%d: %w", edge.TransformableEntityID, edge.ConservedEntityID, err)
	}
	edge.ID = id
	return nil
}

func (s *Store) CreateGoodContainTransformable(ctx context.Context, edge *models.GoodContainTransformableEntity) error {
	query := `INSERT INTO good_transformable_entities (good_id, transformable_entity_id, quantity, unit_id)
	          VALUES (:good_id, :transformable_entity_id, :quantity, :unit_id)`
	id, err := s.insert(ctx, query, edge)
	if err != nil {
		return fmt.Errorf("create good %d content %d: %w", edge.GoodID, edge.TransformableEntityID, err)
	}
	edge.ID = id
	return nil
}

func (s *Store) CreateGoodContainGood(ctx context.Context, edge *models.GoodContainGood) error {
	query := `INSERT INTO good_goods (parent_good_id, child_good_id, quantity, unit_id)
	          VALUES (:parent_good_id, :child_good_id, :quantity, :unit_id)`
	id, err := s.insert(ctx, query, edge)
	if err != nil {
		return fmt.Errorf("create good %d sub-good %d: %w", edge.ParentGoodID, edge.ChildGoodID, err)
	}
	edge.ID = id
	return nil
}

func (s *Store) CreateEconomicFlow(ctx context.Context, flow *models.EconomicFlow) error {
	query := `INSERT INTO economic_flows (process_id, good_id, quantity, unit_id, direction, is_byproduct)
	          VALUES (:process_id, :good_id, :quantity, :unit_id, :direction, :is_byproduct)`
	id, err := s.insert(ctx, query, flow)
	if err != nil {
		return fmt.Errorf("create %s flow for process %d: %w", flow.Direction, flow.ProcessID, err)
	}
	flow.ID = id
	return nil
}

func (s *Store) ListEconomicFlows(ctx context.Context, processID int64) ([]models.EconomicFlow, error) {
	var flows []models.EconomicFlow
	query := `SELECT id, process_id, good_id, quantity, unit_id, direction, is_byproduct
	          FROM economic_flows WHERE process_id = ? ORDER BY id`
	if err := sqlx.SelectContext(ctx, s.db, &flows, query, processID); err != nil {
		return nil, fmt.Errorf("list economic flows: %w", err)
	}
	return flows, nil
}
