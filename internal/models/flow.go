package models

type FlowDirection string

const (
	DirectionInput  FlowDirection = "input"
	DirectionOutput FlowDirection = "output"
)

// TransformableEntityContainConservedEntity stores the amount of a conserved
// entity per unit of transformable entity.
type TransformableEntityContainConservedEntity struct {
	ID                    int64   `db:"id" json:"id"`
	TransformableEntityID int64   `db:"transformable_entity_id" json:"transformable_entity_id"`
	ConservedEntityID     int64   `db:"conserved_entity_id" json:"conserved_entity_id"`
	UnitID                int64   `db:"unit_id" json:"unit_id"`
	Ratio                 float64 `db:"ratio" json:"ratio"`
}

type GoodContainTransformableEntity struct {
	ID                    int64   `db:"id" json:"id"`
	GoodID                int64   `db:"good_id" json:"good_id"`
	TransformableEntityID int64   `db:"transformable_entity_id" json:"transformable_entity_id"`
	Quantity              float64 `db:"quantity" json:"quantity"`
	UnitID                int64   `db:"unit_id" json:"unit_id"`
}

type GoodContainGood struct {
	ID           int64   `db:"id" json:"id"`
	ParentGoodID int64   `db:"parent_good_id" json:"parent_good_id"`
	ChildGoodID  int64   `db:"child_good_id" json:"child_good_id"`
	Quantity     float64 `db:"quantity" json:"quantity"`
	UnitID       int64   `db:"unit_id" json:"unit_id"`
}

type EconomicFlow struct {
	ID          int64         `db:"id" json:"id"`
	ProcessID   int64         `db:"process_id" json:"process_id"`
	GoodID      int64         `db:"good_id" json:"good_id"`
	Quantity    float64       `db:"quantity" json:"quantity"`
	UnitID      int64         `db:"unit_id" json:"unit_id"`
	Direction   FlowDirection `db:"direction" json:"direction"`
	IsByproduct bool          `db:"is_byproduct" json:"is_byproduct"`
}

// ElementaryFlow is an exchange between a process and the environment.
// The workbook importer does not produce these yet.
type ElementaryFlow struct {
	ID                int64         `db:"id" json:"id"`
	ProcessID         int64         `db:"process_id" json:"process_id"`
	CompartmentID     int64         `db:"compartment_id" json:"compartment_id"`
	ConservedEntityID int64         `db:"conserved_entity_id" json:"conserved_entity_id"`
	Quantity          float64       `db:"quantity" json:"quantity"`
	UnitID            int64         `db:"unit_id" json:"unit_id"`
	Direction         FlowDirection `db:"direction" json:"direction"`
}
