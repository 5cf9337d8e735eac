package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"factoriowiki/internal"
	"factoriowiki/internal/util"
)

// Listing collects one identity per icon link to a Japanese item page.
// The link title is the display name. Duplicates by code keep the first
// occurrence, in page order.
func (p *Page) Listing(baseURL string) []internal.Identity {
	base, err := url.Parse(baseURL)
	if err != nil {
		slog.Warn("invalid listing base url", "url", baseURL, "err", err)
		return nil
	}

	out := []internal.Identity{}
	seen := map[string]struct{}{}
	p.doc.Find("div.factorio-icon").Each(func(_ int, icon *goquery.Selection) {
		a := icon.Find("a").First()
		href, _ := a.Attr("href")
		title, _ := a.Attr("title")
		title = strings.TrimSpace(title)
		if href == "" || title == "" || !util.HasLocaleSuffix(href, string(internal.LocaleJA)) {
			return
		}

		code := util.CodeFromHref(href)
		if code == "" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		out = append(out, internal.Identity{
			NameJA: title,
			Code:   code,
			URL:    base.ResolveReference(ref).String(),
		})
	})
	return out
}
