package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"factoriowiki/internal"
)

// Labels are matched case-insensitively against cell text in either locale.
var (
	recipeLabels   = []string{"レシピ", "Recipe"}
	totalLabels    = []string{"トータルコスト", "Total raw"}
	capacityLabels = []string{"ロケット容量", "Rocket capacity"}
)

// Document is one parsed page. Structural absence is reported as "not
// found" or nil, never as an error.
type Document interface {
	Recipe(mode internal.GameMode) (internal.RecipeTable, bool)
	RocketCapacity() *int
	Listing(baseURL string) []internal.Identity
}

// Extractor parses a page once so one fetch can feed several extractions.
type Extractor interface {
	Parse(page string) (Document, error)
}

// HTML is the goquery-backed Extractor.
type HTML struct{}

func (HTML) Parse(page string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Page is the goquery Document.
type Page struct {
	doc *goquery.Document
}

func hasIcon(s *goquery.Selection) bool {
	return s.Find("div.factorio-icon").Length() > 0
}
