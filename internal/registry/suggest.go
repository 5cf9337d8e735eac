package registry

import (
	"sort"

	"github.com/antzucaro/matchr"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

const (
	suggestMinScore = 0.80
	suggestLimit    = 3
)

type Suggestion struct {
	Identity internal.Identity
	Score    float64
}

// Suggest ranks items whose display name in locale or code is close to
// query by Jaro-Winkler similarity.
func (r *Registry) Suggest(query string, locale internal.Locale) []Suggestion {
	q := util.NormalizeName(query)
	if q == "" {
		return nil
	}

	out := []Suggestion{}
	for _, it := range r.items {
		score := matchr.JaroWinkler(q, util.NormalizeName(it.Name(locale)), false)
		if byCode := matchr.JaroWinkler(q, util.NormalizeName(it.Code), false); byCode > score {
			score = byCode
		}
		if score < suggestMinScore {
			continue
		}
		out = append(out, Suggestion{Identity: it, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > suggestLimit {
		out = out[:suggestLimit]
	}
	return out
}
