package steam

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Jonax/SteamBadgeScan/pkg/badge"
)

var levelPattern = regexp.MustCompile(`Level ([0-9]+)`)

// BadgeExists probes one variant's badge page. Steam answers with a
// redirect to the profile's badges overview when a game has no card set,
// so the badge exists iff we land on the URL we asked for.
func (c *Client) BadgeExists(ctx context.Context, appID int64, rarity badge.Rarity) (bool, error) {
	u := c.badgeURL(appID, rarity)
	p, err := c.fetch(ctx, u)
	if err != nil {
		return false, err
	}
	return p.FinalURL == u, nil
}

// BadgeDetail fetches a badge page and returns the current level plus the
// card slots in page order.
func (c *Client) BadgeDetail(ctx context.Context, appID int64, rarity badge.Rarity) (int64, []badge.CardInfo, error) {
	p, err := c.fetch(ctx, c.badgeURL(appID, rarity))
	if err != nil {
		return 0, nil, err
	}
	return ParseBadgePage(p.Body)
}

// ParseBadgePage reads the badge level and card list out of badge page
// markup.
func ParseBadgePage(body string) (int64, []badge.CardInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return 0, nil, err
	}

	var cards []badge.CardInfo
	doc.Find("div.badge_card_set_card").Each(func(_ int, card *goquery.Selection) {
		owned := card.HasClass("owned")
		cards = append(cards, badge.CardInfo{
			Name:  cardName(card.Find("div.badge_card_set_text").First(), owned),
			Owned: owned,
		})
	})

	return badgeLevel(doc), cards, nil
}

// badgeLevel finds the level line inside the badge description. It sits in
// the only child div without a class; no such line means the badge was
// never crafted, which is level 0.
func badgeLevel(doc *goquery.Document) int64 {
	level := int64(0)
	doc.Find("div.badge_info_description").First().ChildrenFiltered("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if _, ok := div.Attr("class"); ok {
			return true
		}
		m := levelPattern.FindStringSubmatch(div.Text())
		if m == nil {
			return true
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return true
		}
		level = n
		return false
	})
	return level
}

// cardName picks the card title out of the set_text div. Owned cards put a
// quantity element first, which pushes the title to the third text
// fragment; unowned cards start with it.
func cardName(sel *goquery.Selection, owned bool) string {
	idx := 0
	if owned {
		idx = 2
	}
	fragments := textFragments(sel)
	if idx >= len(fragments) {
		return strings.TrimSpace(sel.Text())
	}
	return strings.TrimSpace(fragments[idx])
}

// textFragments lists every text node under the selection in document
// order, the same way the badge page interleaves quantity markup and card
// titles.
func textFragments(sel *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				out = append(out, child.Data)
				continue
			}
			walk(child)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}
