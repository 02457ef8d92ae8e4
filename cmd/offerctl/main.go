package main

import "github.com/atmx/offer-engine/internal/cli"

func main() {
	cli.Execute()
}
