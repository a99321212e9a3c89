// Package main seeds a local development database with a demo user, a
// small credit-pack catalog and a couple of voice agents, so the API is
// usable without a live CRM or payment account.
package main

import (
	"context"
	"log"
	"time"

	"velvet/internal/config"
	"velvet/internal/models"
	"velvet/internal/repositories"
)

func main() {
	config.LoadEnv()

	if config.IsProduction() {
		log.Fatal("seed is for local development only")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if repositories.CacheService != nil {
			repositories.CacheService.Close()
		}
	}()

	ctx := context.Background()
	now := time.Now().UTC()

	users := repositories.NewUserRepository(repositories.DB)
	if _, err := users.GetByGoogleID(ctx, "seed-google-id"); err != nil {
		demo := &models.User{
			GoogleID:    "seed-google-id",
			DisplayName: "Demo User",
			Email:       "demo@example.com",
			Role:        "admin",
			LastLoginAt: now,
		}
		if err := users.Create(ctx, demo); err != nil {
			log.Fatal("Failed to create demo user:", err)
		}
		log.Println("created demo user", demo.Email)
	} else {
		log.Println("demo user already exists")
	}

	products := repositories.NewProductRepository(repositories.DB)
	for _, p := range []models.Product{
		{ExternalID: "seed-starter", Name: "Starter Pack 100 Credits", PriceAmount: 999, Currency: "USD", Credits: 100},
		{ExternalID: "seed-pro", Name: "Pro Pack 500 Credits", PriceAmount: 3999, Currency: "USD", Credits: 500},
		{ExternalID: "seed-max", Name: "Max Pack 2000 Credits", PriceAmount: 12999, Currency: "USD", Credits: 2000},
	} {
		p.CRMUpdatedAt = now
		p.LastSyncedAt = now
		if err := products.Upsert(ctx, &p); err != nil {
			log.Fatal("Failed to seed product:", err)
		}
	}
	log.Println("seeded products")

	agents := repositories.NewAgentRepository(repositories.DB)
	for _, a := range []models.Agent{
		{RecordID: "seed-agent-ava", Name: "Ava", RatePerMinute: 1, Status: models.AgentStatusActive},
		{RecordID: "seed-agent-max", Name: "Max", RatePerMinute: 2, Status: models.AgentStatusActive},
	} {
		if err := agents.Upsert(ctx, &a); err != nil {
			log.Fatal("Failed to seed agent:", err)
		}
	}
	log.Println("seeded agents")
}
