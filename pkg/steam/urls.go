package steam

import (
	"fmt"

	"github.com/Jonax/SteamBadgeScan/pkg/badge"
)

func (c *Client) gamesURL() string {
	return fmt.Sprintf("%s/id/%s/games/?tab=all&sort=name", c.cfg.BaseURL, c.cfg.Profile)
}

func (c *Client) badgeURL(appID int64, rarity badge.Rarity) string {
	u := fmt.Sprintf("%s/id/%s/gamecards/%d", c.cfg.BaseURL, c.cfg.Profile, appID)
	if rarity == badge.RarityFoil {
		u += "/?border=1"
	}
	return u
}

// MarketSearchURL builds the search render URL for one card set. App 753
// is Steam itself, which owns all Community items; the cardborder tag
// splits normal from foil.
func (c *Client) MarketSearchURL(appID int64, rarity badge.Rarity) string {
	border := 0
	if rarity == badge.RarityFoil {
		border = 1
	}
	return fmt.Sprintf("%s/market/search/render/?appid=753&category_753_cardborder[]=tag_cardborder_%d&category_753_Game[]=tag_app_%d&count=20&sort_column=name&sort_dir=asc", c.cfg.BaseURL, border, appID)
}
