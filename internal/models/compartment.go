package models

import "database/sql"

// ElementaryFlowCompartment is a node of the environment compartment tree.
type ElementaryFlowCompartment struct {
	ID                  int64          `db:"id" json:"id"`
	ProjectID           int64          `db:"project_id" json:"project_id"`
	Name                string         `db:"name" json:"name"`
	Description         sql.NullString `db:"description" json:"description"`
	ParentCompartmentID sql.NullInt64  `db:"parent_compartment_id" json:"parent_compartment_id"` // null for root compartments
}
