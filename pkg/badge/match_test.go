package badge

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCorrelateExactBeatsSubstring(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "Season Pack (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{
			"Fall Valley":          OwnedCard(false),
			"Fall Valley Carnival": OwnedCard(true),
		},
	}
	listings := []Listing{
		{Name: "Fall Valley Carnival", Quantity: 5, Price: dec("0.20")},
		{Name: "Fall Valley", Quantity: 9, Price: dec("0.10")},
	}

	Correlate(rec, listings, false)

	carnival, ok := rec.Cards["Fall Valley Carnival"].Listing()
	if !ok || carnival.Quantity != 5 {
		t.Fatalf("carnival card not matched exactly: %#v", rec.Cards["Fall Valley Carnival"])
	}
	if !carnival.OwnCard {
		t.Fatal("carnival listing lost the ownership flag")
	}
	valley, ok := rec.Cards["Fall Valley"].Listing()
	if !ok || valley.Quantity != 9 {
		t.Fatalf("valley card not matched: %#v", rec.Cards["Fall Valley"])
	}
	if valley.OwnCard {
		t.Fatal("valley listing gained an ownership flag")
	}
}

func TestCorrelateDecoratedListing(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "G (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{"Gnome": OwnedCard(false)},
	}

	Correlate(rec, []Listing{{Name: "Gnome (Trading Card)", Quantity: 3, Price: dec("0.05")}}, false)

	l, ok := rec.Cards["Gnome"].Listing()
	if !ok || l.Name != "Gnome (Trading Card)" {
		t.Fatalf("decorated listing not assigned: %#v", rec.Cards["Gnome"])
	}
}

func TestCorrelateFoilSuffixBeatsSubstring(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "G (Foil)", Rarity: RarityFoil},
		Cards: map[string]CardState{
			"Gno":   OwnedCard(false),
			"Gnome": OwnedCard(true),
		},
	}

	Correlate(rec, []Listing{{Name: "Gnome (Foil)", Quantity: 1, Price: dec("0.80")}}, false)

	l, ok := rec.Cards["Gnome"].Listing()
	if !ok {
		t.Fatalf("foil suffix should pick the full card name: %#v", rec.Cards)
	}
	if !l.OwnCard {
		t.Fatal("ownership flag not carried onto the listing")
	}
	if rec.Cards["Gno"].Matched() {
		t.Fatal("shorter card matched instead of the suffix hit")
	}
}

func TestCorrelateAmbiguousPicksFirstSorted(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "S (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{
			"Valley":      OwnedCard(false),
			"Fall Valley": OwnedCard(false),
		},
	}

	Correlate(rec, []Listing{{Name: "Fall Valley (Trading Card)", Quantity: 7, Price: dec("0.30")}}, false)

	if _, ok := rec.Cards["Fall Valley"].Listing(); !ok {
		t.Fatalf("want the lexicographically first candidate matched, got %#v", rec.Cards)
	}
	if rec.Cards["Valley"].Matched() {
		t.Fatal("second candidate should stay open")
	}
}

func TestCorrelateStrictLeavesAmbiguousOpen(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "S (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{
			"Valley":      OwnedCard(false),
			"Fall Valley": OwnedCard(false),
		},
	}

	Correlate(rec, []Listing{{Name: "Fall Valley (Trading Card)", Quantity: 7, Price: dec("0.30")}}, true)

	if rec.Cards["Fall Valley"].Matched() || rec.Cards["Valley"].Matched() {
		t.Fatalf("strict mode must not assign ambiguous listings: %#v", rec.Cards)
	}
}

func TestCorrelateMatchedCardLeavesCandidacy(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "G (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{"Gnome": OwnedCard(true)},
	}
	listings := []Listing{
		{Name: "Gnome", Quantity: 10, Price: dec("0.10")},
		{Name: "Gnome (Trading Card)", Quantity: 4, Price: dec("0.12")},
	}

	Correlate(rec, listings, false)

	l, ok := rec.Cards["Gnome"].Listing()
	if !ok || l.Quantity != 10 {
		t.Fatalf("first listing should stick: %#v", rec.Cards["Gnome"])
	}
	if !l.OwnCard {
		t.Fatal("ownership flag lost after the second listing was considered")
	}
}

func TestCorrelateUnmatchedListingDropped(t *testing.T) {
	rec := &Record{
		Badge: Badge{Name: "A (Normal)", Rarity: RarityNormal},
		Cards: map[string]CardState{"Alpha": OwnedCard(false)},
	}

	Correlate(rec, []Listing{{Name: "Omega", Quantity: 2, Price: dec("0.99")}}, false)

	if !reflect.DeepEqual(rec.Cards["Alpha"], OwnedCard(false)) {
		t.Fatalf("card state changed by an unrelated listing: %#v", rec.Cards["Alpha"])
	}
}
