package steam

import (
	"context"
	"errors"
	"regexp"

	"github.com/tidwall/gjson"

	"github.com/Jonax/SteamBadgeScan/pkg/badge"
)

// The games tab embeds the whole catalog as a script literal.
var gamesListPattern = regexp.MustCompile(`var rgGames = (.+);`)

// OwnedGames fetches the profile's games catalog.
func (c *Client) OwnedGames(ctx context.Context) ([]badge.Game, error) {
	p, err := c.fetch(ctx, c.gamesURL())
	if err != nil {
		return nil, err
	}
	return ParseGamesList(p.Body)
}

// ParseGamesList extracts the rgGames catalog from the games tab markup.
func ParseGamesList(body string) ([]badge.Game, error) {
	m := gamesListPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, errors.New("games list not found, the profile may be private or the ID wrong")
	}
	parsed := gjson.Parse(m[1])
	if !parsed.IsArray() {
		return nil, errors.New("games list is not a JSON array")
	}

	var games []badge.Game
	parsed.ForEach(func(_, g gjson.Result) bool {
		games = append(games, badge.Game{
			AppID: g.Get("appid").Int(),
			Name:  g.Get("name").String(),
		})
		return true
	})
	return games, nil
}
