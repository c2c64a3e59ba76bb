package main

import (
	"context"
	"log"
	"os"

	"github.com/awnumar/memguard"
	"github.com/sh3xu/logbook/internal/client"
	"github.com/sh3xu/logbook/internal/client/config"
)

func main() {
	defer memguard.Purge()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := client.NewApp(ctx, cfg, os.Stdin, os.Stdout)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
