package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var ownedKeys = []string{"item_name", "item_code", "recipe", "production_number", "rocket_capacity", "volume"}

func (r *ItemRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := ItemRecord{}
	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		return nil
	}

	if err := take("item_name", &out.ItemName); err != nil {
		return err
	}
	if err := take("item_code", &out.ItemCode); err != nil {
		return err
	}

	_, hasRecipe := raw["recipe"]
	_, hasProduction := raw["production_number"]
	if hasRecipe || hasProduction {
		out.Recipe = &RecipeSection{}
		if err := take("recipe", &out.Recipe.Materials); err != nil {
			return err
		}
		if err := take("production_number", &out.Recipe.ProductionNumber); err != nil {
			return err
		}
	}

	_, hasCapacity := raw["rocket_capacity"]
	_, hasVolume := raw["volume"]
	if hasCapacity || hasVolume {
		out.Volume = &VolumeSection{}
		if err := take("rocket_capacity", &out.Volume.RocketCapacity); err != nil {
			return err
		}
		if err := take("volume", &out.Volume.Volume); err != nil {
			return err
		}
	}

	for _, key := range ownedKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*r = out
	return nil
}

// MarshalJSON writes owned keys in a fixed order followed by extra keys
// sorted by name. Call it directly rather than through json.Marshal to
// keep non-ASCII and '&' unescaped.
func (r ItemRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeRaw := func(key string, value []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyBlob, _ := encodeNoEscape(key)
		buf.Write(keyBlob)
		buf.WriteByte(':')
		buf.Write(value)
	}
	write := func(key string, value any) error {
		blob, err := encodeNoEscape(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		writeRaw(key, blob)
		return nil
	}

	if err := write("item_name", r.ItemName); err != nil {
		return nil, err
	}
	if err := write("item_code", r.ItemCode); err != nil {
		return nil, err
	}
	if r.Recipe != nil {
		materials := r.Recipe.Materials
		if materials == nil {
			materials = []MaterialEntry{}
		}
		if err := write("recipe", materials); err != nil {
			return nil, err
		}
		if err := write("production_number", r.Recipe.ProductionNumber); err != nil {
			return nil, err
		}
	}
	if r.Volume != nil {
		if err := write("rocket_capacity", r.Volume.RocketCapacity); err != nil {
			return nil, err
		}
		if err := write("volume", r.Volume.Volume); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeRaw(k, r.Extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
