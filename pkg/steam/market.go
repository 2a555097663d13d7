package steam

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/Jonax/SteamBadgeScan/internal/utils"
	"github.com/Jonax/SteamBadgeScan/pkg/badge"
)

// Steam serves this inside the search response when the backend is
// overloaded. It clears on its own, so the fetch is worth repeating.
const busyMessage = "There was an error performing your search. Please try again later."

// ErrSearchBusy marks a market search that stayed overloaded through
// every retry.
var ErrSearchBusy = errors.New("market search overloaded")

var listingPricePattern = regexp.MustCompile(`\$([0-9]+\.[0-9]{2}) USD`)

// SearchListings fetches the market search results for one card set. Busy
// responses are retried up to the configured cap, with the usual
// post-fetch pause spacing the attempts.
func (c *Client) SearchListings(ctx context.Context, appID int64, rarity badge.Rarity) ([]badge.Listing, error) {
	u := c.MarketSearchURL(appID, rarity)
	for attempt := 1; attempt <= c.cfg.SearchRetries; attempt++ {
		p, err := c.fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		if strings.Contains(p.Body, busyMessage) {
			utils.Log.Warnf("market search busy for app %d (attempt %d/%d)", appID, attempt, c.cfg.SearchRetries)
			continue
		}
		return ParseSearchResults(p.Body)
	}
	return nil, fmt.Errorf("app %d: %w after %d attempts", appID, ErrSearchBusy, c.cfg.SearchRetries)
}

// ParseSearchResults parses the listing rows embedded in a market search
// render response.
func ParseSearchResults(body string) ([]badge.Listing, error) {
	results := gjson.Get(body, "results_html")
	if !results.Exists() {
		return nil, errors.New("market response has no results_html")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(results.String()))
	if err != nil {
		return nil, err
	}

	var listings []badge.Listing
	var parseErr error
	doc.Find("div.market_listing_row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		l, err := parseListingRow(row)
		if err != nil {
			parseErr = err
			return false
		}
		listings = append(listings, l)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return listings, nil
}

func parseListingRow(row *goquery.Selection) (badge.Listing, error) {
	name := strings.TrimSpace(row.Find("span.market_listing_item_name").First().Text())

	qtyText := strings.ReplaceAll(strings.TrimSpace(row.Find("span.market_listing_num_listings_qty").First().Text()), ",", "")
	qty, err := strconv.ParseInt(qtyText, 10, 64)
	if err != nil {
		return badge.Listing{}, fmt.Errorf("listing %q: bad quantity %q", name, qtyText)
	}

	priceText := row.Find("div.market_listing_their_price span.market_table_value span").First().Text()
	m := listingPricePattern.FindStringSubmatch(priceText)
	if m == nil {
		return badge.Listing{}, fmt.Errorf("listing %q: no USD price in %q", name, strings.TrimSpace(priceText))
	}
	price, err := decimal.NewFromString(m[1])
	if err != nil {
		return badge.Listing{}, fmt.Errorf("listing %q: bad price %q", name, m[1])
	}

	link, _ := row.Closest("a").Attr("href")

	return badge.Listing{
		Name:     name,
		Quantity: qty,
		Price:    price,
		Link:     link,
	}, nil
}
