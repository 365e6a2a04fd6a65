package main

import (
	"context"
	"log"

	"wine-cellar-be/internal/bootstrap"
	"wine-cellar-be/internal/config"
	"wine-cellar-be/internal/server"
	"wine-cellar-be/internal/tracer"
	"wine-cellar-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.Init("wine-cellar-be")
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	go func() {
		log.Println("Background: Starting cache warming consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
