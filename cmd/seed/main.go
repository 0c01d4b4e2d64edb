package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"clustermap/internal/shared/config"
	"clustermap/internal/shared/database"
	"clustermap/internal/venues"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Clustermap Venue Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding venue registry...")
	if err := seeder.SeedVenues(); err != nil {
		log.Fatalf("Failed to seed venues: %v", err)
	}
	fmt.Println("✅ Venue registry seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Registry is ready.")
}

// CleanDatabase truncates the registry tables
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"venues",
	}

	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedVenues inserts the known campuses
func (s *Seeder) SeedVenues() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := venues.NewRepository(s.db.GetPostgreSQL())

	seed := []venues.Venue{
		{ID: uuid.New(), Slug: "paris", Name: "Paris", UpstreamID: 1, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "lyon", Name: "Lyon", UpstreamID: 9, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "nice", Name: "Nice", UpstreamID: 41, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "mulhouse", Name: "Mulhouse", UpstreamID: 48, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "angouleme", Name: "Angouleme", UpstreamID: 31, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "le-havre", Name: "Le Havre", UpstreamID: 62, Timezone: "Europe/Paris", Active: true},
		{ID: uuid.New(), Slug: "perpignan", Name: "Perpignan", UpstreamID: 64, Timezone: "Europe/Paris", Active: true},
	}

	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			return fmt.Errorf("failed to create venue %s: %w", seed[i].Slug, err)
		}
		fmt.Printf("  • %s (upstream id %d)\n", seed[i].Name, seed[i].UpstreamID)
	}

	return nil
}
