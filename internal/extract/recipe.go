package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

const arrow = "→"

func modeTab(mode internal.GameMode) string {
	if mode == internal.ModeBase {
		return "tab-1"
	}
	return "tab-2"
}

// Recipe finds the recipe section for the given mode. Tables inside the
// mode's tab are tried first in document order; when the page has no tabs
// every table mentioning a recipe label is a candidate. The first table
// whose recipe section yields an icon wins.
func (p *Page) Recipe(mode internal.GameMode) (internal.RecipeTable, bool) {
	tab := "." + modeTab(mode)
	candidates := p.doc.Find("table").FilterFunction(func(_ int, t *goquery.Selection) bool {
		return t.Closest(tab).Length() > 0
	})
	if candidates.Length() == 0 {
		if p.doc.Find(".tab-1, .tab-2").Length() > 0 {
			slog.Debug("page has no tab for mode", "mode", mode)
			return internal.RecipeTable{}, false
		}
		candidates = p.doc.Find("table")
	}

	var (
		out   internal.RecipeTable
		found bool
	)
	candidates.EachWithBreak(func(_ int, table *goquery.Selection) bool {
		if !util.ContainsAny(table.Text(), recipeLabels) {
			return true
		}
		out, found = recipeSection(table)
		return !found
	})
	if !found {
		slog.Debug("recipe not found", "mode", mode)
	}
	return out, found
}

// recipeSection reads the rows between the recipe label row and the total
// cost row. Each icon row replaces the previous one.
func recipeSection(table *goquery.Selection) (internal.RecipeTable, bool) {
	var (
		out       internal.RecipeTable
		found     bool
		inSection bool
	)
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := row.Text()
		if !hasIcon(row) {
			if util.ContainsAny(text, totalLabels) && inSection {
				return false
			}
			if util.ContainsAny(text, recipeLabels) {
				inSection = true
			}
			return true
		}
		if !inSection {
			return true
		}
		materials, product := splitRow(row.Get(0))
		if len(materials) == 0 && product == nil {
			return true
		}
		out = internal.RecipeTable{Materials: materials, Product: product}
		found = true
		return true
	})
	return out, found
}

// splitRow walks the row in document order: icons before the arrow are
// materials, the first icon after it is the product.
func splitRow(row *html.Node) ([]internal.RawIcon, *internal.RawIcon) {
	var (
		materials  []internal.RawIcon
		product    *internal.RawIcon
		afterArrow bool
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode && strings.Contains(n.Data, arrow):
			afterArrow = true
			return
		case n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "factorio-icon"):
			icon, ok := readIcon(n)
			if !ok {
				return
			}
			if !afterArrow {
				materials = append(materials, icon)
			} else if product == nil {
				product = &icon
			} else {
				slog.Debug("ignoring extra output icon", "code", icon.Code)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(row)
	return materials, product
}

func readIcon(n *html.Node) (internal.RawIcon, bool) {
	icon := goquery.NewDocumentFromNode(n)
	href, ok := icon.Find("a[href]").First().Attr("href")
	if !ok {
		return internal.RawIcon{}, false
	}
	code := util.CodeFromHref(href)
	if code == "" {
		return internal.RawIcon{}, false
	}
	qty := util.NormalizeSpaces(icon.Find(".factorio-icon-text").First().Text())
	return internal.RawIcon{Code: code, Quantity: qty}, true
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}
