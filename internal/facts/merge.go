package facts

import (
	"encoding/json"
	"slices"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

// Merge folds the facts of one extraction pass into the stored record.
// A nil fact means the pass did not run. Inside a pass, a field is replaced
// only by a non-nil value, so stored data is never erased. The section keys
// of a pass that ran are always present in the result. Merging the same
// facts twice gives the same record as merging once.
func Merge(existing *internal.ItemRecord, id internal.Identity, locale internal.Locale, recipe *internal.RecipeFact, volume *internal.VolumeFact) internal.ItemRecord {
	out := clone(existing)
	out.ItemCode = id.Code
	if name := id.Name(locale); name != "" {
		out.ItemName = name
	}

	if recipe != nil {
		if out.Recipe == nil {
			out.Recipe = &internal.RecipeSection{Materials: []internal.MaterialEntry{}}
		}
		if recipe.Materials != nil {
			out.Recipe.Materials = cloneMaterials(recipe.Materials)
		}
		if recipe.ProductionNumber != nil {
			out.Recipe.ProductionNumber = util.FloatPtr(*recipe.ProductionNumber)
		}
	}

	if volume != nil {
		if out.Volume == nil {
			out.Volume = &internal.VolumeSection{}
		}
		// Volume always follows the stored capacity.
		if volume.RocketCapacity != nil {
			c := *volume.RocketCapacity
			out.Volume.RocketCapacity = &c
			out.Volume.Volume = Volume(out.Volume.RocketCapacity)
		}
	}

	return out
}

func clone(rec *internal.ItemRecord) internal.ItemRecord {
	if rec == nil {
		return internal.ItemRecord{}
	}
	out := internal.ItemRecord{
		ItemName: rec.ItemName,
		ItemCode: rec.ItemCode,
	}
	if rec.Recipe != nil {
		out.Recipe = &internal.RecipeSection{Materials: cloneMaterials(rec.Recipe.Materials)}
		if rec.Recipe.ProductionNumber != nil {
			out.Recipe.ProductionNumber = util.FloatPtr(*rec.Recipe.ProductionNumber)
		}
	}
	if rec.Volume != nil {
		out.Volume = &internal.VolumeSection{}
		if rec.Volume.RocketCapacity != nil {
			c := *rec.Volume.RocketCapacity
			out.Volume.RocketCapacity = &c
		}
		if rec.Volume.Volume != nil {
			out.Volume.Volume = util.FloatPtr(*rec.Volume.Volume)
		}
	}
	if len(rec.Extra) > 0 {
		out.Extra = make(map[string]json.RawMessage, len(rec.Extra))
		for k, v := range rec.Extra {
			out.Extra[k] = slices.Clone(v)
		}
	}
	return out
}

func cloneMaterials(in []internal.MaterialEntry) []internal.MaterialEntry {
	if in == nil {
		return nil
	}
	out := make([]internal.MaterialEntry, len(in))
	for i, m := range in {
		out[i] = internal.MaterialEntry{ItemCode: m.ItemCode}
		if m.ConsumptionNumber != nil {
			out[i].ConsumptionNumber = util.FloatPtr(*m.ConsumptionNumber)
		}
	}
	return out
}
