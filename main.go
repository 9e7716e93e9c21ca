package main

import (
	"os"

	"github.com/house-aratus/membership-api/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
