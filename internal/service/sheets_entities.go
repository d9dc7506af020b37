package service

import (
	"context"
	"database/sql"
	"flowdata/internal/models"

	"github.com/sirupsen/logrus"
)

// l_cons: conserved entities and their units
func (r *importRun) importConserved(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetConserved)
	if err != nil {
		return err
	}

	for _, row := range decodeConservedRows(records) {
		if row.ExtID == "" || row.Name == "" {
			r.skip(SheetConserved)
			continue
		}

		r.detail(logrus.Fields{"sheet": SheetConserved, "row": row.Line, "ext_id": row.ExtID, "molar_mass": row.MolarMass.Float64},
			"-| Detected ConservedEntity: "+row.Name)

		if _, err := r.resolver.Unit(ctx, r.project.ID, row.Unit, row.Dimension); err != nil {
			return err
		}
		entity := &models.ConservedEntity{
			ProjectID: r.project.ID,
			Name:      row.Name,
			ShortName: sql.NullString{String: row.ExtID, Valid: true},
			MolarMass: row.MolarMass,
		}
		if err := r.store.CreateConservedEntity(ctx, entity); err != nil {
			return err
		}
		r.created(models.KindConservedEntity)
		r.resolver.Conserved[row.ExtID] = entity
	}
	return nil
}

// l_trans: transformable entities and their units
func (r *importRun) importTransformables(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetTransformable)
	if err != nil {
		return err
	}

	for _, row := range decodeTransformableRows(records) {
		if row.ExtID == "" || row.Name == "" {
			r.skip(SheetTransformable)
			continue
		}

		r.detail(logrus.Fields{"sheet": SheetTransformable, "row": row.Line, "ext_id": row.ExtID},
			"-| Detected TransformableEntity: "+row.Name)

		if _, err := r.resolver.Unit(ctx, r.project.ID, row.Unit, row.Dimension); err != nil {
			return err
		}
		entity := &models.TransformableEntity{
			ProjectID: r.project.ID,
			Name:      row.Name,
			ShortName: sql.NullString{String: row.ExtID, Valid: true},
		}
		if err := r.store.CreateTransformableEntity(ctx, entity); err != nil {
			return err
		}
		r.created(models.KindTransformableEntity)
		r.resolver.Transformables[row.ExtID] = entity
	}
	return nil
}

// l_goods: goods with their reference unit
func (r *importRun) importGoods(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetGoods)
	if err != nil {
		return err
	}

	for _, row := range decodeGoodRows(records) {
		if row.ProductID == "" || row.Name == "" {
			r.skip(SheetGoods)
			continue
		}

		r.detail(logrus.Fields{"sheet": SheetGoods, "row": row.Line, "ext_id": row.ProductID},
			"-| Detected Good: "+row.Name)

		unit, err := r.resolver.Unit(ctx, r.project.ID, row.Unit, row.Dimension)
		if err != nil {
			return err
		}
		good := &models.Good{
			ProjectID:       r.project.ID,
			Name:            row.Name,
			ReferenceUnitID: unit.ID,
		}
		if err := r.store.CreateGood(ctx, good); err != nil {
			return err
		}
		r.created(models.KindGood)
		r.resolver.Goods[row.ProductID] = good
	}
	return nil
}

// l_act: processes. The location column is read but not stored yet.
func (r *importRun) importActivities(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetActivities)
	if err != nil {
		return err
	}

	for _, row := range decodeActivityRows(records) {
		if row.ActivityID == "" || row.Name == "" {
			r.skip(SheetActivities)
			continue
		}

		r.detail(logrus.Fields{"sheet": SheetActivities, "row": row.Line, "ext_id": row.ActivityID, "location": row.Location},
			"-| Detected Process: "+row.Name)

		process := &models.Process{ProjectID: r.project.ID, Name: row.Name}
		if err := r.store.CreateProcess(ctx, process); err != nil {
			return err
		}
		r.created(models.KindProcess)
		r.resolver.RegisterProcess(row.ActivityID, process)
	}
	return nil
}

// background_biosphere: compartment hierarchy
func (r *importRun) importCompartments(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetBiosphere)
	if err != nil {
		return err
	}

	for _, row := range decodeCompartmentRows(records) {
		if row.Compartment == "" {
			return missingKey(SheetBiosphere, row.Line, "compartment name", row)
		}

		parent, err := r.resolver.Compartment(ctx, r.project.ID, row.Compartment, nil)
		if err != nil {
			return err
		}
		if row.SubCompartment != "" {
			if _, err := r.resolver.Compartment(ctx, r.project.ID, row.SubCompartment, parent); err != nil {
				return err
			}
		}
	}
	return nil
}
