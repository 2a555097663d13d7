package steam

import (
	"reflect"
	"testing"

	"github.com/Jonax/SteamBadgeScan/pkg/badge"
)

const badgePage = `<html><head><title>Portal 2 badge</title></head><body>
<div class="badge_detail_tasks">
	<div class="badge_info_description">
		<div class="badge_info_title">Aperture Scientist</div>
		<div>
			Level 2, 200 XP
		</div>
	</div>
	<div class="badge_card_set_cards">
		<div class="badge_card_set_card owned">
			<div class="game_card_ctn"><img src="wheatley.png"></div>
			<div class="badge_card_set_text">
				<div class="badge_card_set_text_qty">(2)</div>
				Wheatley
			</div>
		</div>
		<div class="badge_card_set_card unowned">
			<div class="game_card_ctn"><img src="glados.png"></div>
			<div class="badge_card_set_text">
				GLaDOS
			</div>
		</div>
	</div>
</div>
</body></html>`

func TestParseBadgePage(t *testing.T) {
	level, cards, err := ParseBadgePage(badgePage)
	if err != nil {
		t.Fatal(err)
	}
	if level != 2 {
		t.Fatalf("level: want 2, got %d", level)
	}
	want := []badge.CardInfo{
		{Name: "Wheatley", Owned: true},
		{Name: "GLaDOS", Owned: false},
	}
	if !reflect.DeepEqual(cards, want) {
		t.Fatalf("unexpected cards.\nwant: %#v\ngot:  %#v", want, cards)
	}
}

func TestParseBadgePageUncrafted(t *testing.T) {
	const page = `<html><body>
<div class="badge_info_description">
	<div class="badge_info_title">Never crafted</div>
</div>
<div class="badge_card_set_card unowned">
	<div class="badge_card_set_text">
		Lonely Card
	</div>
</div>
</body></html>`

	level, cards, err := ParseBadgePage(page)
	if err != nil {
		t.Fatal(err)
	}
	if level != 0 {
		t.Fatalf("level: want 0 for an uncrafted badge, got %d", level)
	}
	if len(cards) != 1 || cards[0].Name != "Lonely Card" || cards[0].Owned {
		t.Fatalf("unexpected cards: %#v", cards)
	}
}

func TestParseBadgePageEmpty(t *testing.T) {
	level, cards, err := ParseBadgePage("<html><body></body></html>")
	if err != nil {
		t.Fatal(err)
	}
	if level != 0 || cards != nil {
		t.Fatalf("want an empty result, got level %d cards %#v", level, cards)
	}
}
