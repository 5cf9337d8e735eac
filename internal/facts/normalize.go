package facts

import (
	"log/slog"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

// RocketVolume is the payload volume of one rocket launch.
const RocketVolume = 1000.0

// Volume is RocketVolume/capacity. Nil and zero capacity both mean the item
// cannot be launched, so there is no volume.
func Volume(capacity *int) *float64 {
	if capacity == nil || *capacity == 0 {
		return nil
	}
	return util.FloatPtr(RocketVolume / float64(*capacity))
}

// Coerce reads an icon caption as a number. Unreadable captions give nil.
func Coerce(raw string) *float64 {
	return util.ParseQuantity(raw).Value
}

// BuildRecipeFact coerces an extracted recipe table. When found is false the
// fact carries no materials and no production number, so a merge keeps
// whatever was stored before.
func BuildRecipeFact(id internal.Identity, locale internal.Locale, table internal.RecipeTable, found bool) internal.RecipeFact {
	fact := internal.RecipeFact{
		ItemCode: id.Code,
		ItemName: id.Name(locale),
	}
	if !found {
		return fact
	}

	fact.Materials = make([]internal.MaterialEntry, 0, len(table.Materials))
	for _, icon := range table.Materials {
		qty := Coerce(icon.Quantity)
		if qty == nil {
			fact.Warnings++
			slog.Warn("material quantity is not a number", "item", id.Code, "material", icon.Code, "raw", icon.Quantity)
		}
		fact.Materials = append(fact.Materials, internal.MaterialEntry{
			ItemCode:          icon.Code,
			ConsumptionNumber: qty,
		})
	}

	fact.ProductionNumber = util.FloatPtr(1)
	if table.Product != nil {
		if qty := Coerce(table.Product.Quantity); qty != nil {
			fact.ProductionNumber = qty
		} else {
			fact.Warnings++
			slog.Warn("product quantity is not a number, using 1", "item", id.Code, "raw", table.Product.Quantity)
		}
	}
	return fact
}

func BuildVolumeFact(id internal.Identity, locale internal.Locale, capacity *int) internal.VolumeFact {
	return internal.VolumeFact{
		ItemCode:       id.Code,
		ItemName:       id.Name(locale),
		RocketCapacity: capacity,
		Volume:         Volume(capacity),
	}
}
