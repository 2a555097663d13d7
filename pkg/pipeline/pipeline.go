package pipeline

import (
	"context"
	"fmt"

	"github.com/Jonax/SteamBadgeScan/internal/utils"
	"github.com/Jonax/SteamBadgeScan/pkg/badge"
	"github.com/Jonax/SteamBadgeScan/pkg/checkpoint"
	"github.com/Jonax/SteamBadgeScan/pkg/report"
)

// Source is everything the pipeline needs from the Community site,
// abstracting away the transport, pacing, and parsing behind it.
type Source interface {
	OwnedGames(ctx context.Context) ([]badge.Game, error)
	BadgeExists(ctx context.Context, appID int64, rarity badge.Rarity) (bool, error)
	BadgeDetail(ctx context.Context, appID int64, rarity badge.Rarity) (int64, []badge.CardInfo, error)
	SearchListings(ctx context.Context, appID int64, rarity badge.Rarity) ([]badge.Listing, error)
	MarketSearchURL(appID int64, rarity badge.Rarity) string
}

// Options adjusts pipeline behavior.
type Options struct {
	// StrictMatch leaves ambiguous market listings unassigned.
	StrictMatch bool
	// CSVPath is where the final report lands.
	CSVPath string
}

type Pipeline struct {
	src   Source
	store *checkpoint.Store
	opts  Options
}

func New(src Source, store *checkpoint.Store, opts Options) *Pipeline {
	if opts.CSVPath == "" {
		opts.CSVPath = "results.csv"
	}
	return &Pipeline{src: src, store: store, opts: opts}
}

// Run executes the five stages in order. A stage whose checkpoint is
// already on disk is skipped, which is how an interrupted scan resumes;
// delete the output directory to start over.
func (p *Pipeline) Run(ctx context.Context) error {
	stages := []struct {
		name     string
		artifact checkpoint.Artifact
		run      func(context.Context) error
	}{
		{"catalog", checkpoint.Games, p.fetchCatalog},
		{"discovery", checkpoint.Badges, p.discoverBadges},
		{"progress", checkpoint.AvailableBadges, p.inspectProgress},
		{"market", checkpoint.MarketData, p.correlateMarket},
		{"analysis", checkpoint.Results, p.rank},
	}
	for _, stage := range stages {
		if p.store.Exists(stage.artifact) {
			utils.Log.Infof("%s already present, skipping the %s stage", stage.artifact, stage.name)
			continue
		}
		utils.Log.Infof("running the %s stage", stage.name)
		if err := stage.run(ctx); err != nil {
			return fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}
	return nil
}

func (p *Pipeline) fetchCatalog(ctx context.Context) error {
	games, err := p.src.OwnedGames(ctx)
	if err != nil {
		return err
	}
	utils.Log.Infof("found %d games", len(games))
	return p.store.Save(checkpoint.Games, games)
}

func (p *Pipeline) discoverBadges(ctx context.Context) error {
	var games []badge.Game
	if err := p.store.Load(checkpoint.Games, &games); err != nil {
		return err
	}

	badges := []badge.Badge{}
	for i, g := range games {
		utils.Log.Infof("[%d/%d] %s", i+1, len(games), g.Name)
		for _, rarity := range []badge.Rarity{badge.RarityNormal, badge.RarityFoil} {
			ok, err := p.src.BadgeExists(ctx, g.AppID, rarity)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			utils.Log.Infof("  %s badge found", rarity.Label())
			badges = append(badges, badge.NewBadge(g, rarity))
		}
	}
	utils.Log.Infof("found %d badges across %d games", len(badges), len(games))
	return p.store.Save(checkpoint.Badges, badges)
}

func (p *Pipeline) inspectProgress(ctx context.Context) error {
	var badges []badge.Badge
	if err := p.store.Load(checkpoint.Badges, &badges); err != nil {
		return err
	}

	available := []badge.Record{}
	for i, b := range badges {
		utils.Log.Infof("[%d/%d] %s", i+1, len(badges), b.Name)
		level, cards, err := p.src.BadgeDetail(ctx, b.AppID, b.Rarity)
		if err != nil {
			return err
		}

		rec := badge.Record{Badge: b, Level: level, Cards: make(map[string]badge.CardState, len(cards))}
		for _, c := range cards {
			rec.Cards[c.Name] = badge.OwnedCard(c.Owned)
		}
		if !rec.CanLevelUp() {
			utils.Log.Infof("  already at max level %d", rec.Level)
			continue
		}
		utils.Log.Infof("  level %d available", rec.Level+1)
		utils.Log.Infof("  progress to level %d: %s cards", rec.Level+1, rec.Progress())
		available = append(available, rec)
	}
	utils.Log.Infof("%d badges can still level up", len(available))
	return p.store.Save(checkpoint.AvailableBadges, available)
}

func (p *Pipeline) correlateMarket(ctx context.Context) error {
	var records []badge.Record
	if err := p.store.Load(checkpoint.AvailableBadges, &records); err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		utils.Log.Infof("[%d/%d] %s", i+1, len(records), rec.Name)
		listings, err := p.src.SearchListings(ctx, rec.AppID, rec.Rarity)
		if err != nil {
			return err
		}
		badge.Correlate(rec, listings, p.opts.StrictMatch)
	}
	return p.store.Save(checkpoint.MarketData, records)
}

func (p *Pipeline) rank(ctx context.Context) error {
	var records []badge.Record
	if err := p.store.Load(checkpoint.MarketData, &records); err != nil {
		return err
	}

	results := make([]badge.Result, 0, len(records))
	for _, rec := range records {
		results = append(results, badge.Summarize(rec))
	}
	badge.Rank(results)
	if err := p.store.Save(checkpoint.Results, results); err != nil {
		return err
	}

	rows := make([]report.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, report.Row{
			Badge:        r.Name,
			Rarity:       string(r.Rarity),
			Price:        "$" + r.SetPrice.StringFixed(2),
			Availability: r.Availability,
			Link:         p.src.MarketSearchURL(r.AppID, r.Rarity),
		})
	}
	if err := report.WriteFile(p.opts.CSVPath, rows); err != nil {
		return err
	}
	utils.Log.Infof("wrote %d ranked badges to %s", len(rows), p.opts.CSVPath)
	return nil
}
