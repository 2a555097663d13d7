package badge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/Jonax/SteamBadgeScan/internal/utils"
)

const foilSuffix = " (Foil)"

// Correlate assigns market listings to the cards of rec. For each listing
// the rules run in order and the first hit wins: exact card name, card
// name plus the " (Foil)" suffix (foil badges only), then card name
// contained anywhere in the listing name. Cards are tried in lexicographic
// order, and a card that already has a listing is no longer a candidate.
// In strict mode a listing whose substring match is ambiguous stays
// unassigned instead of going to the first candidate.
func Correlate(rec *Record, listings []Listing, strict bool) {
	for _, l := range listings {
		name, ok := matchListing(openCards(rec), l, rec.Rarity, strict)
		if !ok {
			utils.Log.Debugf("no card on %q matches listing %q", rec.Name, l.Name)
			continue
		}
		l.OwnCard = rec.Cards[name].Owned()
		rec.Cards[name] = MatchedCard(l)
	}
	logUnmatched(rec, listings)
}

// openCards returns the names of cards without a listing, sorted.
func openCards(rec *Record) []string {
	names := make([]string, 0, len(rec.Cards))
	for name, state := range rec.Cards {
		if !state.Matched() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func matchListing(names []string, l Listing, r Rarity, strict bool) (string, bool) {
	for _, name := range names {
		if name == l.Name {
			return name, true
		}
	}
	if r == RarityFoil {
		for _, name := range names {
			if name+foilSuffix == l.Name {
				return name, true
			}
		}
	}

	var candidates []string
	for _, name := range names {
		if strings.Contains(l.Name, name) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) > 1 {
		utils.Log.Warnf("listing %q is a substring match for %d cards (%s)", l.Name, len(candidates), similarities(l.Name, candidates))
		if strict {
			utils.Log.Warnf("strict matching on, leaving %q unassigned", l.Name)
			return "", false
		}
	}
	return candidates[0], true
}

// similarities renders Jaro-Winkler scores against the listing name, for
// the ambiguous-match warning.
func similarities(listingName string, names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %.3f", name, matchr.JaroWinkler(listingName, name, false)))
	}
	return strings.Join(parts, ", ")
}

// logUnmatched reports cards that finished correlation without a listing,
// naming the closest listing by similarity to help debug odd market names.
func logUnmatched(rec *Record, listings []Listing) {
	for _, name := range openCards(rec) {
		closest, score := closestListing(name, listings)
		if closest == "" {
			utils.Log.Warnf("no listing found for card %q on %q", name, rec.Name)
			continue
		}
		utils.Log.Warnf("no listing matched card %q on %q (closest: %q, %.3f)", name, rec.Name, closest, score)
	}
}

func closestListing(name string, listings []Listing) (string, float64) {
	best, bestScore := "", 0.0
	for _, l := range listings {
		if score := matchr.JaroWinkler(name, l.Name, false); score > bestScore {
			best, bestScore = l.Name, score
		}
	}
	return best, bestScore
}
