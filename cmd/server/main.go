package main

import (
	"context"
	"log"

	"github.com/namaniisc/CloudDrop/internal/server"
	"github.com/namaniisc/CloudDrop/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	defer app.Close()

	app.Run(ctx)

}
