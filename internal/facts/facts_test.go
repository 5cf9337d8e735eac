package facts

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

var plate = internal.Identity{NameJA: "鉄板", Code: "Iron_plate", URL: "https://wiki.factorio.com/Iron_plate/ja"}

func TestVolume(t *testing.T) {
	require.Nil(t, Volume(nil))
	require.Nil(t, Volume(util.IntPtr(0)))
	require.Equal(t, 10.0, *Volume(util.IntPtr(100)))
	require.Equal(t, 1000.0, *Volume(util.IntPtr(1)))
}

func TestCoerce(t *testing.T) {
	require.Equal(t, 1.0, *Coerce("1"))
	require.Equal(t, 10.0, *Coerce("×10"))
	require.Nil(t, Coerce("abc"))
	require.Nil(t, Coerce(""))
}

func TestBuildRecipeFact(t *testing.T) {
	table := internal.RecipeTable{
		Materials: []internal.RawIcon{{Code: "Iron_ore", Quantity: "1"}, {Code: "Mystery", Quantity: "abc"}},
		Product:   &internal.RawIcon{Code: "Iron_plate", Quantity: "2"},
	}
	fact := BuildRecipeFact(plate, internal.LocaleJA, table, true)

	require.Equal(t, "鉄板", fact.ItemName)
	require.Equal(t, 1, fact.Warnings)
	require.Equal(t, 2.0, *fact.ProductionNumber)
	require.Len(t, fact.Materials, 2)
	require.Equal(t, 1.0, *fact.Materials[0].ConsumptionNumber)
	require.Nil(t, fact.Materials[1].ConsumptionNumber)
}

func TestBuildRecipeFactDefaultsProductionToOne(t *testing.T) {
	table := internal.RecipeTable{Materials: []internal.RawIcon{{Code: "Wood", Quantity: "1"}}}
	fact := BuildRecipeFact(plate, internal.LocaleEN, table, true)
	require.Equal(t, "Iron_plate", fact.ItemName)
	require.Equal(t, 1.0, *fact.ProductionNumber)
}

func TestBuildRecipeFactNotFound(t *testing.T) {
	fact := BuildRecipeFact(plate, internal.LocaleJA, internal.RecipeTable{}, false)
	require.Nil(t, fact.Materials)
	require.Nil(t, fact.ProductionNumber)
}

func TestMergeFirstExtraction(t *testing.T) {
	recipe := BuildRecipeFact(plate, internal.LocaleJA, internal.RecipeTable{}, false)
	got := Merge(nil, plate, internal.LocaleJA, &recipe, nil)

	blob, err := got.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"item_name":"鉄板","item_code":"Iron_plate","recipe":[],"production_number":null}`, string(blob))
}

func TestMergePreservesFieldsOnNull(t *testing.T) {
	existing := &internal.ItemRecord{
		ItemName: "鉄板",
		ItemCode: "Iron_plate",
		Recipe: &internal.RecipeSection{
			Materials:        []internal.MaterialEntry{{ItemCode: "Iron_ore", ConsumptionNumber: util.FloatPtr(1)}},
			ProductionNumber: util.FloatPtr(1),
		},
		Volume: &internal.VolumeSection{RocketCapacity: util.IntPtr(100), Volume: util.FloatPtr(10)},
		Extra:  map[string]json.RawMessage{"note": json.RawMessage(`"keep me"`)},
	}

	vol := BuildVolumeFact(plate, internal.LocaleJA, nil)
	recipe := BuildRecipeFact(plate, internal.LocaleJA, internal.RecipeTable{}, false)
	got := Merge(existing, plate, internal.LocaleJA, &recipe, &vol)

	if diff := cmp.Diff(*existing, got); diff != "" {
		t.Fatalf("null facts changed the record (-want +got):\n%s", diff)
	}
}

func TestMergeOverwritesWithNewValues(t *testing.T) {
	existing := &internal.ItemRecord{
		ItemName: "old",
		ItemCode: "Iron_plate",
		Volume:   &internal.VolumeSection{RocketCapacity: util.IntPtr(50), Volume: util.FloatPtr(20)},
	}
	vol := BuildVolumeFact(plate, internal.LocaleJA, util.IntPtr(100))
	got := Merge(existing, plate, internal.LocaleJA, nil, &vol)

	require.Equal(t, "鉄板", got.ItemName)
	require.Nil(t, got.Recipe)
	require.Equal(t, 100, *got.Volume.RocketCapacity)
	require.Equal(t, 10.0, *got.Volume.Volume)
	require.Equal(t, 50, *existing.Volume.RocketCapacity, "existing record must not be mutated")
}

func TestMergeZeroCapacityClearsVolume(t *testing.T) {
	existing := &internal.ItemRecord{
		ItemName: "鉄板",
		ItemCode: "Iron_plate",
		Volume:   &internal.VolumeSection{RocketCapacity: util.IntPtr(100), Volume: util.FloatPtr(10)},
	}
	vol := BuildVolumeFact(plate, internal.LocaleJA, util.IntPtr(0))
	got := Merge(existing, plate, internal.LocaleJA, nil, &vol)

	blob, err := got.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"item_name":"鉄板","item_code":"Iron_plate","rocket_capacity":0,"volume":null}`, string(blob))
}

func TestMergeIsIdempotent(t *testing.T) {
	table := internal.RecipeTable{
		Materials: []internal.RawIcon{{Code: "Iron_ore", Quantity: "1"}},
		Product:   &internal.RawIcon{Code: "Iron_plate", Quantity: "1"},
	}
	recipe := BuildRecipeFact(plate, internal.LocaleJA, table, true)
	vol := BuildVolumeFact(plate, internal.LocaleJA, util.IntPtr(100))

	once := Merge(nil, plate, internal.LocaleJA, &recipe, &vol)
	twice := Merge(&once, plate, internal.LocaleJA, &recipe, &vol)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("merge not idempotent (-once +twice):\n%s", diff)
	}
}
