package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"factoriowiki/internal"
)

const base = "https://wiki.factorio.com/"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factorio_items.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSkipsIncompleteRows(t *testing.T) {
	path := writeFile(t, "\ufeff日本語アイテム名,アイテムコード,URL\n"+
		"鉄板,Iron_plate,https://wiki.factorio.com/Iron_plate/ja\n"+
		",Nameless,\n"+
		"銅板,,\n"+
		"鉄鉱石,Iron_ore,\n"+
		"鉄板（重複）,Iron_plate,\n")

	reg, err := Load(path, base)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())
	require.Equal(t, "Iron_plate", reg.Items()[0].Code)
	require.Equal(t, "Iron_ore", reg.Items()[1].Code)
}

func TestLoadToleratesStrayQuotes(t *testing.T) {
	path := writeFile(t, "日本語アイテム名,アイテムコード,URL\n"+
		"鉄板,Iron_plate,\n"+
		"12\" pipe,Pipe\"x,\n"+
		"鉄鉱石,Iron_ore,\n")

	reg, err := Load(path, base)
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, "Iron_plate", reg.Items()[0].Code)
	require.Equal(t, internal.Identity{NameJA: `12" pipe`, Code: `Pipe"x`}, reg.Items()[1])
	require.Equal(t, "Iron_ore", reg.Items()[2].Code)
}

func TestLoadAcceptsEnglishHeader(t *testing.T) {
	path := writeFile(t, "name,code,url\nWood plank,Wood,\n")
	reg, err := Load(path, base)
	require.NoError(t, err)
	id, ok := reg.FindByCode("Wood")
	require.True(t, ok)
	require.Equal(t, "Wood plank", id.NameJA)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "absent.csv"), base)
	require.NoError(t, err)
	require.Zero(t, reg.Len())
}

func TestLookupByLocale(t *testing.T) {
	path := writeFile(t, "日本語アイテム名,アイテムコード,URL\n鉄板,Iron_plate,\n")
	reg, err := Load(path, base)
	require.NoError(t, err)

	_, ok := reg.FindByName("鉄板", internal.LocaleJA)
	require.True(t, ok)
	_, ok = reg.FindByName("鉄板", internal.LocaleEN)
	require.False(t, ok)
	_, ok = reg.FindByName("Iron_plate", internal.LocaleEN)
	require.True(t, ok)

	url, ok := reg.ResolveURL("鉄板", internal.LocaleJA)
	require.True(t, ok)
	require.Equal(t, "https://wiki.factorio.com/Iron_plate/ja", url)

	url, ok = reg.ResolveURL("Iron_plate", internal.LocaleEN)
	require.True(t, ok)
	require.Equal(t, "https://wiki.factorio.com/Iron_plate", url)

	_, ok = reg.ResolveURL("存在しない", internal.LocaleJA)
	require.False(t, ok)
}

func TestResolveFallsBackToCode(t *testing.T) {
	path := writeFile(t, "日本語アイテム名,アイテムコード,URL\n鉄板,Iron_plate,https://example.test/p\n")
	reg, err := Load(path, base)
	require.NoError(t, err)

	url, ok := reg.ResolveURL("Iron_plate", internal.LocaleJA)
	require.True(t, ok)
	require.Equal(t, "https://example.test/p", url)
}

func TestAddPersistsAndRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "items.csv")
	reg, err := Load(path, base)
	require.NoError(t, err)

	require.NoError(t, reg.Add(internal.Identity{NameJA: "崖用発破", Code: "Cliff_explosives", URL: "https://wiki.factorio.com/Cliff_explosives/ja"}))
	require.NoError(t, reg.Add(internal.Identity{NameJA: "鉄板", Code: "Iron_plate"}))

	err = reg.Add(internal.Identity{NameJA: "別名", Code: "Iron_plate"})
	require.ErrorIs(t, err, ErrDuplicateCode)

	reloaded, err := Load(path, base)
	require.NoError(t, err)
	require.Equal(t, reg.Items(), reloaded.Items())

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "日本語アイテム名,アイテムコード,URL\n"+
		"崖用発破,Cliff_explosives,https://wiki.factorio.com/Cliff_explosives/ja\n"+
		"鉄板,Iron_plate,\n", string(blob))
}

func TestReplaceDedupesAndRebuildsIndex(t *testing.T) {
	path := writeFile(t, "日本語アイテム名,アイテムコード,URL\n石,Stone,\n")
	reg, err := Load(path, base)
	require.NoError(t, err)

	require.NoError(t, reg.Replace([]internal.Identity{
		{NameJA: "鉄板", Code: "Iron_plate"},
		{NameJA: "鉄鉱石", Code: "Iron_ore"},
		{NameJA: "鉄板2", Code: "Iron_plate"},
	}))
	require.Equal(t, 2, reg.Len())
	_, ok := reg.FindByCode("Stone")
	require.False(t, ok)
	id, ok := reg.FindByName("鉄鉱石", internal.LocaleJA)
	require.True(t, ok)
	require.Equal(t, "Iron_ore", id.Code)
}

func TestLookupMissReturnsSuggestions(t *testing.T) {
	path := writeFile(t, "日本語アイテム名,アイテムコード,URL\n"+
		"鉄板,Iron_plate,\n鉄鉱石,Iron_ore,\n電子回路,Electronic_circuit,\n")
	reg, err := Load(path, base)
	require.NoError(t, err)

	_, err = reg.Lookup("Iron_plat", internal.LocaleEN)
	require.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.NotEmpty(t, nf.Suggestions)
	require.Equal(t, "Iron_plate", nf.Suggestions[0].Identity.Code)
	require.LessOrEqual(t, len(nf.Suggestions), 3)
}

func TestDeriveURL(t *testing.T) {
	cases := []struct {
		name   string
		code   string
		locale internal.Locale
		want   string
	}{
		{name: "ja", code: "Iron_plate", locale: internal.LocaleJA, want: "https://wiki.factorio.com/Iron_plate/ja"},
		{name: "en", code: "Iron_plate", locale: internal.LocaleEN, want: "https://wiki.factorio.com/Iron_plate"},
		{name: "colon in code", code: "Tips:foo", locale: internal.LocaleJA, want: "https://wiki.factorio.com/Tips:foo/ja"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveURL(base, tc.code, tc.locale))
		})
	}
}
