package models

import "database/sql"

// ConservedEntity is a quantity conserved across transformations, e.g. an element.
type ConservedEntity struct {
	ID        int64           `db:"id" json:"id"`
	ProjectID int64           `db:"project_id" json:"project_id"`
	Name      string          `db:"name" json:"name"`
	ShortName sql.NullString  `db:"short_name" json:"short_name"` // external id in the workbook
	MolarMass sql.NullFloat64 `db:"molar_mass" json:"molar_mass"` // g/mol
}

type TransformableEntity struct {
	ID        int64          `db:"id" json:"id"`
	ProjectID int64          `db:"project_id" json:"project_id"`
	Name      string         `db:"name" json:"name"`
	ShortName sql.NullString `db:"short_name" json:"short_name"`
}

type Good struct {
	ID              int64          `db:"id" json:"id"`
	ProjectID       int64          `db:"project_id" json:"project_id"`
	Name            string         `db:"name" json:"name"`
	Description     sql.NullString `db:"description" json:"description"`
	ReferenceUnitID int64          `db:"reference_unit_id" json:"reference_unit_id"`
}

type Process struct {
	ID          int64          `db:"id" json:"id"`
	ProjectID   int64          `db:"project_id" json:"project_id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description"`
}
