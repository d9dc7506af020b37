package service

import (
	"context"
	"flowdata/internal/models"
	"flowdata/internal/utils"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// cons_permol: molar composition of transformable entities
func (r *importRun) importCompositions(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetComposition)
	if err != nil {
		return err
	}

	mol, err := r.resolver.Unit(ctx, r.project.ID, "mol", "amount")
	if err != nil {
		return err
	}

	for _, row := range decodeCompositionRows(records) {
		switch {
		case row.Substance == "":
			return missingKey(SheetComposition, row.Line, "substance", row)
		case row.Element == "":
			return missingKey(SheetComposition, row.Line, "element", row)
		case !row.Ratio.Valid:
			return missingKey(SheetComposition, row.Line, "composition", row)
		}

		t := r.resolver.Transformables[row.Substance]
		if t == nil {
			return unresolved(SheetComposition, row.Line, "transformable entity", row.Substance, row)
		}
		c := r.resolver.Conserved[row.Element]
		if c == nil {
			return unresolved(SheetComposition, row.Line, "conserved entity", row.Element, row)
		}

		r.detail(logrus.Fields{"sheet": SheetComposition, "row": row.Line, "ratio": row.Ratio.Float64},
			fmt.Sprintf("-| Linking TransformableEntity '%s' with ConservedEntity '%s'", t.Name, c.Name))

		edge := &models.TransformableEntityContainConservedEntity{
			TransformableEntityID: t.ID,
			ConservedEntityID:     c.ID,
			UnitID:                mol.ID,
			Ratio:                 row.Ratio.Float64,
		}
		if err := r.store.CreateTransformableContainConserved(ctx, edge); err != nil {
			return err
		}
		r.created(models.KindComposition)
	}
	return nil
}

// lay_trans: matrix of transformable entities (rows) contained in goods
// (columns). A blank or non-numeric cell means no edge.
func (r *importRun) importGoodTransformables(ctx context.Context, wb *Workbook) error {
	m, err := wb.Matrix(SheetLayTrans)
	if err != nil || m == nil {
		return err
	}

	// Row keys fall back to the transformable's name.
	entities, err := r.store.ListTransformableEntities(ctx, r.project.ID)
	if err != nil {
		return err
	}
	byName := make(map[string]*models.TransformableEntity, len(entities))
	for i := range entities {
		byName[utils.NormalizeName(entities[i].Name)] = &entities[i]
	}

	rowLabel := "transformable entity"
	if len(m.Header) > 0 && strings.TrimSpace(m.Header[0]) != "" {
		rowLabel = strings.TrimSpace(m.Header[0])
	}

	for _, row := range m.Rows {
		key := row.Cell(0)
		if key == "" {
			return missingKey(SheetLayTrans, row.Line, rowLabel, row)
		}
		t := r.resolver.Transformables[key]
		if t == nil {
			t = byName[utils.NormalizeName(key)]
		}
		if t == nil {
			return unresolved(SheetLayTrans, row.Line, "transformable entity", key, row)
		}

		for col := 1; col < len(m.Header); col++ {
			productID := strings.TrimSpace(m.Header[col])
			if productID == "" {
				continue
			}
			qty, ok := utils.ParseQuantity(row.Cell(col))
			if !ok {
				r.skip(SheetLayTrans)
				continue
			}
			g := r.resolver.Goods[productID]
			if g == nil {
				return unresolved(SheetLayTrans, row.Line, "good", productID, row)
			}

			r.detail(logrus.Fields{"sheet": SheetLayTrans, "row": row.Line, "quantity": qty},
				fmt.Sprintf("-| Linking Good '%s' with TransformableEntity '%s'", g.Name, t.Name))

			edge := &models.GoodContainTransformableEntity{
				GoodID:                g.ID,
				TransformableEntityID: t.ID,
				Quantity:              qty,
				UnitID:                g.ReferenceUnitID,
			}
			if err := r.store.CreateGoodContainTransformable(ctx, edge); err != nil {
				return err
			}
			r.created(models.KindGoodTransformable)
		}
	}
	return nil
}

// lay_goods: parent good contains child good
func (r *importRun) importGoodGoods(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetLayGoods)
	if err != nil {
		return err
	}

	for _, row := range decodeGoodContentRows(records) {
		if row.ParentID == "" {
			return missingKey(SheetLayGoods, row.Line, "parent productId", row)
		}
		if row.ChildID == "" {
			return missingKey(SheetLayGoods, row.Line, "child productId", row)
		}
		if !row.Quantity.Valid {
			r.skip(SheetLayGoods)
			continue
		}

		parent := r.resolver.Goods[row.ParentID]
		if parent == nil {
			return unresolved(SheetLayGoods, row.Line, "parent good", row.ParentID, row)
		}
		child := r.resolver.Goods[row.ChildID]
		if child == nil {
			return unresolved(SheetLayGoods, row.Line, "child good", row.ChildID, row)
		}

		r.detail(logrus.Fields{"sheet": SheetLayGoods, "row": row.Line, "quantity": row.Quantity.Float64},
			fmt.Sprintf("-| Linking Good '%s' with sub-Good '%s'", parent.Name, child.Name))

		edge := &models.GoodContainGood{
			ParentGoodID: parent.ID,
			ChildGoodID:  child.ID,
			Quantity:     row.Quantity.Float64,
			UnitID:       child.ReferenceUnitID,
		}
		if err := r.store.CreateGoodContainGood(ctx, edge); err != nil {
			return err
		}
		r.created(models.KindGoodGood)
	}
	return nil
}

// tr: economic flows. One row yields an input flow, an output flow, or both,
// for the process named by the activity label.
func (r *importRun) importEconomicFlows(ctx context.Context, wb *Workbook) error {
	records, err := wb.Records(SheetTransactions)
	if err != nil {
		return err
	}

	if err := r.resolver.LoadProcessCandidates(ctx, r.project.ID); err != nil {
		return err
	}

	for _, row := range decodeTransactionRows(records) {
		if row.Activity == "" {
			return missingKey(SheetTransactions, row.Line, "activity label", row)
		}
		if !row.Quantity.Valid {
			r.skip(SheetTransactions)
			continue
		}

		p := r.resolver.FindProcess(row.Activity)
		if p == nil {
			return unresolved(SheetTransactions, row.Line, "process for activity label", row.Activity, row)
		}

		if row.InputID != "" {
			if err := r.createFlow(ctx, row, p, row.InputID, models.DirectionInput); err != nil {
				return err
			}
		}
		if row.OutputID != "" {
			if err := r.createFlow(ctx, row, p, row.OutputID, models.DirectionOutput); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *importRun) createFlow(ctx context.Context, row transactionRow, p *models.Process, productID string, dir models.FlowDirection) error {
	g := r.resolver.Goods[productID]
	if g == nil {
		return unresolved(SheetTransactions, row.Line, string(dir)+" good", productID, row)
	}

	r.detail(logrus.Fields{"sheet": SheetTransactions, "row": row.Line, "quantity": row.Quantity.Float64},
		fmt.Sprintf("-| Creating EconomicFlow for Process '%s' | %s Good '%s'", p.Name, dir, g.Name))

	flow := &models.EconomicFlow{
		ProcessID:   p.ID,
		GoodID:      g.ID,
		Quantity:    row.Quantity.Float64,
		UnitID:      g.ReferenceUnitID,
		Direction:   dir,
		IsByproduct: false,
	}
	if err := r.store.CreateEconomicFlow(ctx, flow); err != nil {
		return err
	}
	r.created(models.KindEconomicFlow)
	return nil
}
