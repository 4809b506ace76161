package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"taskbot/internal/app"
	"taskbot/internal/config"
)

func main() {
	// .env не обязателен, секреты можно передать окружением напрямую
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	a := app.New(cfg)
	if err := a.Init(context.Background()); err != nil {
		log.Fatalf("инициализация: %v", err)
	}

	if err := a.Run(context.Background()); err != nil {
		log.Fatalf("запуск: %v", err)
	}
}
