package internal

import "encoding/json"

type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleEN Locale = "en"
)

func (l Locale) Valid() bool {
	return l == LocaleJA || l == LocaleEN
}

type GameMode string

const (
	ModeBase     GameMode = "Base"
	ModeSpaceAge GameMode = "SpaceAge"
)

func (m GameMode) Valid() bool {
	return m == ModeBase || m == ModeSpaceAge
}

// Identity is one registry row. The registry stores a single localized
// name column (ja); the en name is the code itself.
type Identity struct {
	NameJA string
	Code   string
	URL    string
}

func (i Identity) Name(locale Locale) string {
	if locale == LocaleJA && i.NameJA != "" {
		return i.NameJA
	}
	return i.Code
}

// RawIcon is an icon cell as it appears on the page, before coercion.
type RawIcon struct {
	Code     string
	Quantity string
}

type RecipeTable struct {
	Materials []RawIcon
	Product   *RawIcon
}

type MaterialEntry struct {
	ItemCode          string   `json:"item_code"`
	ConsumptionNumber *float64 `json:"consumption_number"`
}

type RecipeFact struct {
	ItemCode         string
	ItemName         string
	Materials        []MaterialEntry
	ProductionNumber *float64
	Warnings         int
}

type VolumeFact struct {
	ItemCode       string
	ItemName       string
	RocketCapacity *int
	Volume         *float64
}

type RecipeSection struct {
	Materials        []MaterialEntry
	ProductionNumber *float64
}

type VolumeSection struct {
	RocketCapacity *int
	Volume         *float64
}

// ItemRecord is the persisted per-item JSON document. A nil section was
// never extracted; Extra keeps keys this tool does not own.
type ItemRecord struct {
	ItemName string
	ItemCode string
	Recipe   *RecipeSection
	Volume   *VolumeSection
	Extra    map[string]json.RawMessage
}

type RunKind string

const (
	RunRecipe    RunKind = "recipe"
	RunVolume    RunKind = "volume"
	RunFacts     RunKind = "facts"
	RunBootstrap RunKind = "bootstrap"
)

type RunRow struct {
	ID         int
	TraceID    string
	ItemCode   string
	Kind       RunKind
	URL        string
	Status     string
	Error      *string
	Warnings   int
	Materials  int
	DurationMs int64
	CreatedAt  string
}

type ExportRow struct {
	Name             string
	Code             string
	URL              string
	Recipe           []MaterialEntry
	ProductionNumber *float64
	RocketCapacity   *int
	Volume           *float64
}
