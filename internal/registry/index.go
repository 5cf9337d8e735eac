package registry

import (
	"factoriowiki/internal"
)

// Index maps codes and per-locale display names to positions in the
// registry's ordered item slice.
type Index struct {
	ByCode map[string]int
	ByName map[internal.Locale]map[string]int
}

func BuildIndex(items []internal.Identity) *Index {
	idx := &Index{
		ByCode: map[string]int{},
		ByName: map[internal.Locale]map[string]int{
			internal.LocaleJA: {},
			internal.LocaleEN: {},
		},
	}
	for i, it := range items {
		idx.add(i, it)
	}
	return idx
}

func (idx *Index) add(pos int, it internal.Identity) {
	if _, ok := idx.ByCode[it.Code]; !ok {
		idx.ByCode[it.Code] = pos
	}
	for locale, names := range idx.ByName {
		name := it.Name(locale)
		if name == "" {
			continue
		}
		if _, ok := names[name]; !ok {
			names[name] = pos
		}
	}
}
