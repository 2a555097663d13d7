package main

import "github.com/Jonax/SteamBadgeScan/cmd"

func main() {
	cmd.Execute()
}
