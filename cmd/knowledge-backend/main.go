package main

import (
	"log"

	"github.com/futig/knowledge-backend/internal/builder"
)

func main() {
	app, err := builder.Build()
	if err != nil {
		log.Fatal("Failed to build knowledge backend: ", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Knowledge backend stopped with error: ", err)
	}
}
