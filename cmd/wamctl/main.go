package main

import (
	"github.com/wam-arcade/games-service/internal/cli"
)

func main() {
	cli.Execute()
}
