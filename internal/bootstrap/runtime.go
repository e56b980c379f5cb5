// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"fmt"
	"log"

	"communities/internal/cache"
	"communities/internal/config"
	"communities/internal/database"
	"communities/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo communities.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Connect DB
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedDemoIfEmpty(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo communities: %w", err)
		}
	}

	return db, r, nil
}

// seedDemoIfEmpty loads the default demo dataset unless communities already exist.
func seedDemoIfEmpty(db *gorm.DB) error {
	has, err := seed.HasCommunities(db)
	if err != nil {
		return err
	}
	if has {
		log.Println("demo seeding skipped: communities already present")
		return nil
	}
	_, err = seed.Seed(db, seed.DefaultOptions)
	return err
}
