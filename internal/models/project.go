package models

import (
	"database/sql"
	"time"
)

type Project struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type Dimension struct {
	ID          int64          `db:"id" json:"id"`
	ProjectID   int64          `db:"project_id" json:"project_id"`
	Name        string         `db:"name" json:"name"`
	Description sql.NullString `db:"description" json:"description"`
}

// Unit is shared reference data: Symbol is unique across all projects.
type Unit struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Symbol      string `db:"symbol" json:"symbol"`
	DimensionID int64  `db:"dimension_id" json:"dimension_id"`
}
