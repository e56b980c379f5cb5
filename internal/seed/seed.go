package seed

import (
	"fmt"
	"log"

	"communities/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers          int
	NumCommunities    int
	PostsPerCommunity int
	ShouldClean       bool
	DryRun            bool
}

// DefaultOptions is the preset used for demo data at server startup.
var DefaultOptions = Options{
	NumUsers:          20,
	NumCommunities:    25,
	PostsPerCommunity: 4,
}

// Result summarises what a seeding run created.
type Result struct {
	Users       int
	Communities int
	Posts       int
}

// Seed populates the database with users, communities, subscriptions and posts.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Starting database seeding: %d users, %d communities, ~%d posts each",
		opts.NumUsers, opts.NumCommunities, opts.PostsPerCommunity)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean && !opts.DryRun {
		if err := ClearAll(db); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	f := NewFactory(db, SeedOptions{DryRun: opts.DryRun})

	users := make([]models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, *user)
	}
	log.Printf("✓ %d users created", len(users))

	result := &Result{Users: len(users)}
	for i := 0; i < opts.NumCommunities; i++ {
		community, err := f.CreateCommunity(pickSubscribers(f, users))
		if err != nil {
			return nil, fmt.Errorf("failed to create communities: %w", err)
		}
		result.Communities++

		if len(users) == 0 || opts.PostsPerCommunity <= 0 {
			continue
		}
		count := f.rng.Intn(opts.PostsPerCommunity*2 + 1)
		posts := make([]*models.Post, 0, count)
		for p := 0; p < count; p++ {
			author := users[f.rng.Intn(len(users))]
			posts = append(posts, f.BuildPost(community, &author))
		}
		if err := f.CreatePostsBatch(posts); err != nil {
			return nil, fmt.Errorf("failed to create posts: %w", err)
		}
		result.Posts += len(posts)
	}
	log.Printf("✓ %d communities with %d posts created", result.Communities, result.Posts)

	return result, nil
}

// pickSubscribers returns a random subset of users.
func pickSubscribers(f *Factory, users []models.User) []models.User {
	if len(users) == 0 {
		return nil
	}
	n := f.rng.Intn(len(users) + 1)
	perm := f.rng.Perm(len(users))
	out := make([]models.User, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, users[idx])
	}
	return out
}

// ClearAll removes every seeded row. Join rows and posts go first so foreign
// keys never block the delete.
func ClearAll(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"community_subscribers", "posts", "communities", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// HasCommunities reports whether any community exists.
func HasCommunities(db *gorm.DB) (bool, error) {
	var n int64
	if err := db.Model(&models.Community{}).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
