package main

import (
	"log"

	"whisperbench/ai"
	"whisperbench/audio"
	"whisperbench/internal/api"
	"whisperbench/internal/config"
	"whisperbench/internal/service"
	"whisperbench/models"
)

func main() {
	cfg := config.Load()

	modelMgr, err := models.NewManager(cfg.ModelsDir)
	if err != nil {
		log.Fatalf("Failed to init model manager: %v", err)
	}

	inventory := ai.NewSystemInventory()

	runner, err := ai.NewRunner(ai.RunnerConfig{
		Factory:   &ai.WhisperFactory{Models: modelMgr},
		Loader:    &audio.Loader{},
		Inventory: inventory,
		Threads:   cfg.Threads,
	})
	if err != nil {
		log.Fatalf("Failed to init runner: %v", err)
	}

	benchSvc := service.NewBenchmarkService(runner, ai.Profile(cfg.Profile), cfg.Language)

	server := api.NewServer(cfg, modelMgr, runner, inventory, benchSvc)
	server.Start()
}
