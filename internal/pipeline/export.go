package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"factoriowiki/internal"
	"factoriowiki/internal/registry"
	"factoriowiki/internal/storage"
)

// BuildExportRows joins registry identities with their stored facts.
// Items without a JSON record keep empty fact cells.
func BuildExportRows(reg *registry.Registry, items *storage.ItemStore, locale internal.Locale) ([]internal.ExportRow, error) {
	ids := reg.Items()
	out := make([]internal.ExportRow, 0, len(ids))
	for _, id := range ids {
		row := internal.ExportRow{
			Name: id.Name(locale),
			Code: id.Code,
			URL:  reg.URLFor(id, locale),
		}
		rec, err := items.Load(id.Code)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			if rec.Recipe != nil {
				row.Recipe = rec.Recipe.Materials
				row.ProductionNumber = rec.Recipe.ProductionNumber
			}
			if rec.Volume != nil {
				row.RocketCapacity = rec.Volume.RocketCapacity
				row.Volume = rec.Volume.Volume
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func ExportRowsToXLSX(rows []internal.ExportRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"name", "code", "url", "production_number", "rocket_capacity", "volume", "recipe"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Name)
		set(2, row.Code)
		set(3, row.URL)
		set(4, derefFloat(row.ProductionNumber))
		set(5, derefInt(row.RocketCapacity))
		set(6, derefFloat(row.Volume))
		set(7, FormatRecipe(row.Recipe))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// FormatRecipe renders materials as "code×qty, ...". Unknown quantities
// render as "?".
func FormatRecipe(materials []internal.MaterialEntry) string {
	parts := make([]string, 0, len(materials))
	for _, m := range materials {
		qty := "?"
		if m.ConsumptionNumber != nil {
			qty = strconv.FormatFloat(*m.ConsumptionNumber, 'f', -1, 64)
		}
		parts = append(parts, m.ItemCode+"×"+qty)
	}
	return strings.Join(parts, ", ")
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
