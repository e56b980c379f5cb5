// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"communities/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// SeedOptions tune how the factory builds entities.
type SeedOptions struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// MaxDays bounds how far back generated created_at values go.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	seed := time.Now().UnixNano()
	// seed gofakeit for richer content
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) pastTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// BuildUser constructs a user without persisting it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(1000, 9999)),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildCommunity constructs a community with a realistic created_at spread
// without persisting it.
func (f *Factory) BuildCommunity(overrides ...func(*models.Community)) *models.Community {
	suffix := gofakeit.RandomString([]string{"Club", "Circle", "Society", "Collective", "Guild"})
	community := models.CreateCommunityInput{
		Name:        fmt.Sprintf("%s %s", gofakeit.Hobby(), suffix),
		Description: gofakeit.Sentence(12),
	}.ToCommunity(f.pastTimestamp())

	for _, override := range overrides {
		override(community)
	}
	return community
}

// BuildPost constructs a post in community by author without persisting it.
func (f *Factory) BuildPost(community *models.Community, author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       gofakeit.Sentence(5),
		Content:     gofakeit.Paragraph(1, 3, 5, "\n"),
		CommunityID: community.ID,
		AuthorID:    author.ID,
	}
	createdAt := f.pastTimestamp()
	if createdAt.Before(community.CreatedAt) {
		createdAt = community.CreatedAt
	}
	post.CreatedAt = createdAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if f.opts.DryRun {
		user.ID = f.assignID()
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCommunity constructs and persists a sample community subscribed to by subscribers.
func (f *Factory) CreateCommunity(subscribers []models.User, overrides ...func(*models.Community)) (*models.Community, error) {
	community := f.BuildCommunity(overrides...)
	community.Subscribers = subscribers
	if f.opts.DryRun {
		community.ID = f.assignID()
		log.Printf("[dry-run] CreateCommunity: %q with %d subscribers", community.Name, len(subscribers))
		return community, nil
	}
	if err := f.db.Create(community).Error; err != nil {
		return nil, err
	}
	return community, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}
