package models

import "time"

// Entity kinds counted in an ImportReport.
const (
	KindProject             = "project"
	KindDimension           = "dimension"
	KindUnit                = "unit"
	KindConservedEntity     = "conserved_entity"
	KindTransformableEntity = "transformable_entity"
	KindGood                = "good"
	KindProcess             = "process"
	KindComposition         = "transformable_contain_conserved"
	KindGoodTransformable   = "good_contain_transformable"
	KindGoodGood            = "good_contain_good"
	KindEconomicFlow        = "economic_flow"
	KindCompartment         = "elementary_flow_compartment"
)

// ImportReport summarises one workbook import run
type ImportReport struct {
	RunID      string         `json:"run_id"`
	File       string         `json:"file"`
	ProjectID  int64          `json:"project_id"`
	DryRun     bool           `json:"dry_run"`
	Sheets     []string       `json:"sheets"`
	Created    map[string]int `json:"created"`
	Skipped    map[string]int `json:"skipped"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func NewImportReport(runID, file string, dryRun bool) *ImportReport {
	return &ImportReport{
		RunID:     runID,
		File:      file,
		DryRun:    dryRun,
		Sheets:    []string{},
		Created:   map[string]int{},
		Skipped:   map[string]int{},
		StartedAt: time.Now(),
	}
}

// ImportStatus is what the worker publishes for a queued run.
type ImportStatus struct {
	RunCode   string        `json:"run_code"`
	Status    string        `json:"status"` // queued, running, completed, failed
	File      string        `json:"file"`
	DryRun    bool          `json:"dry_run"`
	Error     string        `json:"error,omitempty"`
	Report    *ImportReport `json:"report,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}
