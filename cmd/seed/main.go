// Command main runs the database seeder for the Communities API.
package main

import (
	"flag"
	"log"

	"communities/internal/config"
	"communities/internal/database"
	"communities/internal/seed"
)

func main() {
	// Parse command line flags
	numCommunities := flag.Int("communities", 25, "Number of communities to create")
	numUsers := flag.Int("users", 50, "Number of users to create")
	postsPer := flag.Int("posts", 4, "Average number of posts per community")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing to the database")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d communities, %d users, ~%d posts each, clean=%v\n",
		*numCommunities, *numUsers, *postsPer, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	res, err := seed.Seed(db, seed.Options{
		NumUsers:          *numUsers,
		NumCommunities:    *numCommunities,
		PostsPerCommunity: *postsPer,
		ShouldClean:       *shouldClean,
		DryRun:            *dryRun,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d communities, %d posts.", res.Users, res.Communities, res.Posts)
}
