package main

import (
	"os"

	"github.com/MatthewPierson90/cultionet/internal/cultienv"
)

func main() {
	os.Exit(cultienv.Main())
}
