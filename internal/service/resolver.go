package service

import (
	"context"
	"database/sql"
	"flowdata/internal/models"
	"flowdata/internal/utils"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	unknownDimension = "unknown"
	dimensionless    = "1"
)

// ReferenceStore is the part of the store the Resolver needs.
type ReferenceStore interface {
	GetOrCreateDimension(ctx context.Context, projectID int64, name string) (*models.Dimension, bool, error)
	GetOrCreateUnit(ctx context.Context, symbol, name string, dimensionID int64) (*models.Unit, bool, error)
	UpdateUnitDimension(ctx context.Context, unitID, dimensionID int64) error
	GetOrCreateCompartment(ctx context.Context, projectID int64, name string, parentID sql.NullInt64) (*models.ElementaryFlowCompartment, bool, error)
	ListProcesses(ctx context.Context, projectID int64) ([]models.Process, error)
}

type compartmentKey struct {
	name     string
	parentID int64 // 0 for root compartments
}

type processCandidate struct {
	name    string
	process *models.Process
}

// Resolver owns the lookup tables of one import run: reference data created
// on demand (dimensions, units, compartments) and the external id maps filled
// by the sheet importers. It is not safe for concurrent use.
type Resolver struct {
	store   ReferenceStore
	log     *logrus.Entry
	verbose bool
	created func(kind string)

	dimensions   map[string]*models.Dimension
	units        map[string]*models.Unit
	compartments map[compartmentKey]*models.ElementaryFlowCompartment

	Conserved      map[string]*models.ConservedEntity
	Transformables map[string]*models.TransformableEntity
	Goods          map[string]*models.Good
	Processes      map[string]*models.Process

	processByName map[string]*models.Process
	candidates    []processCandidate
}

func NewResolver(store ReferenceStore, log *logrus.Entry) *Resolver {
	return &Resolver{
		store:          store,
		log:            log,
		created:        func(string) {},
		dimensions:     map[string]*models.Dimension{},
		units:          map[string]*models.Unit{},
		compartments:   map[compartmentKey]*models.ElementaryFlowCompartment{},
		Conserved:      map[string]*models.ConservedEntity{},
		Transformables: map[string]*models.TransformableEntity{},
		Goods:          map[string]*models.Good{},
		Processes:      map[string]*models.Process{},
		processByName:  map[string]*models.Process{},
	}
}

// Dimension returns the project's dimension with the given name, creating it
// on first use. A blank name resolves to "unknown".
func (r *Resolver) Dimension(ctx context.Context, projectID int64, name string) (*models.Dimension, error) {
	name = strings.TrimSpace(name)
	key := utils.NormalizeName(name)
	if key == "" {
		name, key = unknownDimension, unknownDimension
	}
	if dim, ok := r.dimensions[key]; ok {
		return dim, nil
	}

	dim, created, err := r.store.GetOrCreateDimension(ctx, projectID, name)
	if err != nil {
		return nil, err
	}
	if created {
		r.created(models.KindDimension)
		r.detail(logrus.Fields{"dimension": name}, "  -| Creating Dimension")
	}
	r.dimensions[key] = dim
	return dim, nil
}

// Unit returns the unit with the given symbol, creating it (and its
// dimension) on first use. A blank symbol resolves to the dimensionless "1".
//
// Symbols are global, so a unit may already exist with another dimension.
// The dimension resolved last wins: the stored unit is re-pointed whenever a
// lookup names a different dimension, including later lookups of a cached
// unit that carry a non-blank dimension name.
func (r *Resolver) Unit(ctx context.Context, projectID int64, symbol, dimensionName string) (*models.Unit, error) {
	sym := strings.TrimSpace(symbol)
	if sym == "" {
		sym = dimensionless
	}
	key := utils.NormalizeName(sym)

	if unit, ok := r.units[key]; ok {
		if strings.TrimSpace(dimensionName) == "" {
			return unit, nil
		}
		dim, err := r.Dimension(ctx, projectID, dimensionName)
		if err != nil {
			return nil, err
		}
		if err := r.setUnitDimension(ctx, unit, dim); err != nil {
			return nil, err
		}
		return unit, nil
	}

	dim, err := r.Dimension(ctx, projectID, dimensionName)
	if err != nil {
		return nil, err
	}
	unit, created, err := r.store.GetOrCreateUnit(ctx, sym, sym, dim.ID)
	if err != nil {
		return nil, err
	}
	if created {
		r.created(models.KindUnit)
		r.detail(logrus.Fields{"unit": sym, "dimension": dim.Name}, "  -| Creating Unit")
	}
	if err := r.setUnitDimension(ctx, unit, dim); err != nil {
		return nil, err
	}
	r.units[key] = unit
	return unit, nil
}

func (r *Resolver) setUnitDimension(ctx context.Context, unit *models.Unit, dim *models.Dimension) error {
	if unit.DimensionID == dim.ID {
		return nil
	}
	if err := r.store.UpdateUnitDimension(ctx, unit.ID, dim.ID); err != nil {
		return err
	}
	r.detail(logrus.Fields{"unit": unit.Symbol, "dimension": dim.Name}, "  -| Updating Unit dimension")
	unit.DimensionID = dim.ID
	return nil
}

// Compartment returns the compartment (name, parent) of the project, creating
// it on first use. A nil parent denotes a root compartment.
func (r *Resolver) Compartment(ctx context.Context, projectID int64, name string, parent *models.ElementaryFlowCompartment) (*models.ElementaryFlowCompartment, error) {
	name = strings.TrimSpace(name)
	key := compartmentKey{name: name}
	parentID := sql.NullInt64{}
	parentName := "None"
	if parent != nil {
		key.parentID = parent.ID
		parentID = sql.NullInt64{Int64: parent.ID, Valid: true}
		parentName = parent.Name
	}
	if comp, ok := r.compartments[key]; ok {
		return comp, nil
	}

	comp, created, err := r.store.GetOrCreateCompartment(ctx, projectID, name, parentID)
	if err != nil {
		return nil, err
	}
	if created {
		r.created(models.KindCompartment)
		r.detail(logrus.Fields{"compartment": name, "parent": parentName}, "  -| Creating ElementaryFlowCompartment")
	}
	r.compartments[key] = comp
	return comp, nil
}

// RegisterProcess records a process under its external id and its
// normalized name. A later process with the same name replaces the earlier
// one for exact name matches.
func (r *Resolver) RegisterProcess(activityID string, process *models.Process) {
	r.Processes[activityID] = process
	r.processByName[utils.NormalizeName(process.Name)] = process
}

// LoadProcessCandidates snapshots the project's processes, in creation order,
// for prefix matching in FindProcess.
func (r *Resolver) LoadProcessCandidates(ctx context.Context, projectID int64) error {
	processes, err := r.store.ListProcesses(ctx, projectID)
	if err != nil {
		return err
	}
	r.candidates = make([]processCandidate, 0, len(processes))
	for i := range processes {
		p := processes[i]
		r.candidates = append(r.candidates, processCandidate{name: utils.NormalizeName(p.Name), process: &p})
	}
	return nil
}

// FindProcess resolves an activity label. An exact normalized name match
// wins; otherwise the first candidate whose name is a prefix of the label, or
// has the label as prefix, is returned. Nil means no match.
func (r *Resolver) FindProcess(label string) *models.Process {
	key := utils.NormalizeName(label)
	if key == "" {
		return nil
	}
	if p, ok := r.processByName[key]; ok {
		return p
	}

	var found *models.Process
	matches := 0
	for _, c := range r.candidates {
		if c.name == "" || !(strings.HasPrefix(key, c.name) || strings.HasPrefix(c.name, key)) {
			continue
		}
		if found == nil {
			found = c.process
		}
		matches++
	}
	if matches > 1 {
		// No tie-break beyond creation order; surface it so the data can be fixed.
		r.log.WithFields(logrus.Fields{"label": label, "matches": matches, "process": found.Name}).
			Warn("ambiguous activity label, using first matching process")
	}
	return found
}

func (r *Resolver) detail(fields logrus.Fields, msg string) {
	if r.verbose {
		r.log.WithFields(fields).Info(msg)
	}
}
