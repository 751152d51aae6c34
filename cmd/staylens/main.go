package main

import (
	"os"

	"horse.fit/staylens/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
