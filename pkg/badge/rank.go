package badge

import (
	"sort"
)

// Summarize folds a correlated record into one ranking row. The set price
// sums matched listings only; availability is the minimum quantity across
// all cards, so a single unmatched card pins it to zero.
func Summarize(rec Record) Result {
	res := Result{
		Name:     rec.Name,
		AppID:    rec.AppID,
		Rarity:   rec.Rarity,
		Progress: rec.Progress(),
	}
	first := true
	for _, state := range rec.Cards {
		var qty int64
		if l, ok := state.Listing(); ok {
			res.SetPrice = res.SetPrice.Add(l.Price)
			qty = l.Quantity
		} else {
			res.Unmatched++
		}
		if first || qty < res.Availability {
			res.Availability = qty
			first = false
		}
	}
	return res
}

// Compare orders two ranking rows: fully priced sets before partially
// priced ones, then set price rounded to cents ascending, then
// availability descending.
func Compare(a, b Result) int {
	aPartial, bPartial := a.Unmatched > 0, b.Unmatched > 0
	if aPartial != bPartial {
		if aPartial {
			return 1
		}
		return -1
	}
	if c := a.SetPrice.Round(2).Cmp(b.SetPrice.Round(2)); c != 0 {
		return c
	}
	switch {
	case a.Availability > b.Availability:
		return -1
	case a.Availability < b.Availability:
		return 1
	}
	return 0
}

// Rank sorts results in place, cheapest first. Ties keep their input
// order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return Compare(results[i], results[j]) < 0
	})
}
