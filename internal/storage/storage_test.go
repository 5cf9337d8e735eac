package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

func TestItemStoreSaveLoad(t *testing.T) {
	store := NewItemStore(filepath.Join(t.TempDir(), "json"))

	missing, err := store.Load("Iron_plate")
	require.NoError(t, err)
	require.Nil(t, missing)

	rec := internal.ItemRecord{
		ItemName: "鉄板",
		ItemCode: "Iron_plate",
		Recipe: &internal.RecipeSection{
			Materials:        []internal.MaterialEntry{{ItemCode: "Iron_ore", ConsumptionNumber: util.FloatPtr(1)}},
			ProductionNumber: util.FloatPtr(1),
		},
		Volume: &internal.VolumeSection{RocketCapacity: util.IntPtr(100), Volume: util.FloatPtr(10)},
		Extra:  map[string]json.RawMessage{"memo": json.RawMessage(`"A&B"`)},
	}
	path, err := store.Save(rec)
	require.NoError(t, err)
	require.Equal(t, "item_Iron_plate.json", filepath.Base(path))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
    "item_name": "鉄板",
    "item_code": "Iron_plate",
    "recipe": [
        {
            "item_code": "Iron_ore",
            "consumption_number": 1
        }
    ],
    "production_number": 1,
    "rocket_capacity": 100,
    "volume": 10,
    "memo": "A&B"
}
`
	require.Equal(t, want, string(blob))

	loaded, err := store.Load("Iron_plate")
	require.NoError(t, err)
	if diff := cmp.Diff(rec, *loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestItemStoreKeepsOnlyTouchedSections(t *testing.T) {
	store := NewItemStore(t.TempDir())
	_, err := store.Save(internal.ItemRecord{
		ItemName: "石",
		ItemCode: "Stone",
		Volume:   &internal.VolumeSection{},
	})
	require.NoError(t, err)

	blob, err := os.ReadFile(store.Path("Stone"))
	require.NoError(t, err)
	require.JSONEq(t, `{"item_name":"石","item_code":"Stone","rocket_capacity":null,"volume":null}`, string(blob))
}

func TestItemStoreRejectsCorruptFile(t *testing.T) {
	store := NewItemStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path("Broken"), []byte("{not json"), 0o644))
	_, err := store.Load("Broken")
	require.Error(t, err)
}

func TestItemStoreList(t *testing.T) {
	store := NewItemStore(t.TempDir())
	for _, code := range []string{"Wood", "Coal"} {
		_, err := store.Save(internal.ItemRecord{ItemName: code, ItemCode: code})
		require.NoError(t, err)
	}
	recs, err := store.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "Coal", recs[0].ItemCode)
	require.Equal(t, "Wood", recs[1].ItemCode)
}

func TestLedgerRunsAndMetadata(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "ledger", "factoriowiki.db"))
	require.NoError(t, err)
	defer db.Close()

	msg := "fetch failed"
	_, err = db.InsertRun(internal.RunRow{TraceID: "t1", ItemCode: "Iron_plate", Kind: internal.RunRecipe, URL: "u1", Status: "ok", Materials: 2})
	require.NoError(t, err)
	_, err = db.InsertRun(internal.RunRow{TraceID: "t2", ItemCode: "Coal", Kind: internal.RunVolume, URL: "u2", Status: "failed", Error: &msg})
	require.NoError(t, err)

	runs, err := db.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "Coal", runs[0].ItemCode)
	require.Equal(t, internal.RunVolume, runs[0].Kind)
	require.Equal(t, msg, *runs[0].Error)
	require.Nil(t, runs[1].Error)
	require.Equal(t, 2, runs[1].Materials)

	value, err := db.GetMetadata(MetaLastBootstrap)
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, db.SetMetadata(MetaLastBootstrap, "2026-01-01T00:00:00Z"))
	require.NoError(t, db.SetMetadata(MetaLastBootstrap, "2026-02-01T00:00:00Z"))
	value, err = db.GetMetadata(MetaLastBootstrap)
	require.NoError(t, err)
	require.Equal(t, "2026-02-01T00:00:00Z", *value)
}
