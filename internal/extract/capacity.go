package extract

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"factoriowiki/internal/util"
)

// RocketCapacity returns the integer in the cell next to the first rocket
// capacity label. If no labelled cell carries a number, the first row
// mentioning the label is scanned instead. Nil means the page has no such
// row.
func (p *Page) RocketCapacity() *int {
	var capacity *int
	innermost(p.doc.Find("td"), "td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !util.ContainsAny(cell.Text(), capacityLabels) {
			return true
		}
		next := cell.NextAllFiltered("td").First()
		if next.Length() == 0 {
			return true
		}
		capacity = util.FirstInt(next.Text())
		return capacity == nil
	})
	if capacity != nil {
		return capacity
	}

	innermost(p.doc.Find("tr"), "tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !util.ContainsAny(row.Text(), capacityLabels) {
			return true
		}
		capacity = util.FirstInt(row.Text())
		return capacity == nil
	})
	if capacity == nil {
		slog.Debug("rocket capacity not found")
	}
	return capacity
}

// innermost drops elements that wrap another element of the same kind, so a
// layout cell around a nested infobox does not shadow the real label cell.
func innermost(s *goquery.Selection, tag string) *goquery.Selection {
	return s.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return el.Find(tag).Length() == 0
	})
}
