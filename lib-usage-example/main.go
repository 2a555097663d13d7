package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/Jonax/SteamBadgeScan/pkg/badge"
	"github.com/Jonax/SteamBadgeScan/pkg/checkpoint"
	"github.com/Jonax/SteamBadgeScan/pkg/pipeline"
	"github.com/Jonax/SteamBadgeScan/pkg/steam"
)

func main() {
	// Usage: go run main.go -profile "your_steam_vanity_id"

	profileFlag := flag.String("profile", "", "Steam profile vanity ID")
	outputFlag := flag.String("output", "output", "Checkpoint directory")

	// Parse the command-line flags
	flag.Parse()

	if *profileFlag == "" {
		fmt.Println("Profile is required. Please provide it using the -profile flag.")
		return
	}

	client, err := steam.NewClient(steam.Config{
		Profile:  *profileFlag,
		DelayMin: time.Second,
		DelayMax: 5 * time.Second,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	store, err := checkpoint.NewStore(*outputFlag)
	if err != nil {
		fmt.Println(err)
		return
	}

	if err := pipeline.New(client, store, pipeline.Options{}).Run(context.Background()); err != nil {
		fmt.Println(err)
		return
	}

	var results []badge.Result
	if err := store.Load(checkpoint.Results, &results); err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range results {
		fmt.Println(r.Name, "$"+r.SetPrice.StringFixed(2), r.Availability)
	}
}
