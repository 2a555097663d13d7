package badge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Checkpoint files carry prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Rarity distinguishes the two variants every trading card set can have.
type Rarity string

const (
	RarityNormal Rarity = "normal"
	RarityFoil   Rarity = "foil"
)

// MaxLevel returns the highest badge level craftable for the variant.
func (r Rarity) MaxLevel() int64 {
	if r == RarityFoil {
		return 1
	}
	return 5
}

// Label returns the variant name the way badge pages spell it.
func (r Rarity) Label() string {
	if r == RarityFoil {
		return "Foil"
	}
	return "Normal"
}

// Game is one row of the profile's games catalog.
type Game struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

// Badge identifies one variant of a game's card set.
type Badge struct {
	AppID  int64  `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// NewBadge builds the badge entry for one variant of a game's set.
func NewBadge(g Game, r Rarity) Badge {
	return Badge{
		AppID:  g.AppID,
		Name:   fmt.Sprintf("%s (%s)", g.Name, r.Label()),
		Rarity: r,
	}
}

// CardInfo is one card slot as listed on a badge page.
type CardInfo struct {
	Name  string
	Owned bool
}

// Record is a badge the profile can still level up, with its per-card
// state. Cards is keyed by card name.
type Record struct {
	Badge
	Level int64                `json:"level"`
	Cards map[string]CardState `json:"cards"`
}

func (r Record) CanLevelUp() bool {
	return r.Level < r.Rarity.MaxLevel()
}

// OwnedCount returns how many cards of the set the profile holds.
func (r Record) OwnedCount() int {
	n := 0
	for _, c := range r.Cards {
		if c.Owned() {
			n++
		}
	}
	return n
}

// Progress renders the "owned / total" fraction shown while scanning and
// stored with the final results.
func (r Record) Progress() string {
	return fmt.Sprintf("%d / %d", r.OwnedCount(), len(r.Cards))
}

// Listing is one market search row for a card. OwnCard is filled in during
// correlation with the ownership flag the card had before the listing
// replaced it.
type Listing struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Link     string          `json:"link"`
	OwnCard  bool            `json:"ownCard"`
}

// CardState is the value stored per card in a Record. Before market
// correlation it is only the ownership flag; once a listing is assigned it
// carries the listing instead. The JSON form mirrors that, a bare boolean
// or the listing object.
type CardState struct {
	matched bool
	owned   bool
	listing Listing
}

// OwnedCard returns the pre-correlation state for a card.
func OwnedCard(owned bool) CardState {
	return CardState{owned: owned}
}

// MatchedCard returns the state for a card with an assigned listing.
func MatchedCard(l Listing) CardState {
	return CardState{matched: true, listing: l}
}

// Matched reports whether a market listing has been assigned to the card.
func (s CardState) Matched() bool { return s.matched }

// Owned reports whether the profile holds the card.
func (s CardState) Owned() bool {
	if s.matched {
		return s.listing.OwnCard
	}
	return s.owned
}

// Listing returns the assigned listing, if any.
func (s CardState) Listing() (Listing, bool) {
	return s.listing, s.matched
}

func (s CardState) MarshalJSON() ([]byte, error) {
	if s.matched {
		return json.Marshal(s.listing)
	}
	return json.Marshal(s.owned)
}

func (s *CardState) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var l Listing
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return err
		}
		*s = MatchedCard(l)
		return nil
	}
	var owned bool
	if err := json.Unmarshal(trimmed, &owned); err != nil {
		return err
	}
	*s = OwnedCard(owned)
	return nil
}

// Result is one row of the final ranking. Unmatched counts cards that
// ended correlation without a listing; it stays off fully priced rows.
type Result struct {
	Name         string          `json:"name"`
	AppID        int64           `json:"appid"`
	Rarity       Rarity          `json:"rarity"`
	Progress     string          `json:"progress"`
	SetPrice     decimal.Decimal `json:"set_price"`
	Availability int64           `json:"availability"`
	Unmatched    int             `json:"unmatched,omitempty"`
}
