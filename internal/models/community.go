// Package models contains data structures for the application's domain models.
package models

import "time"

// Community represents a community that users subscribe to and post in.
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Posts       []Post    `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
	Subscribers []User    `gorm:"many2many:community_subscribers" json:"subscribers,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// PostsCount is not persisted; computed at query time
	PostsCount int64 `gorm:"->;-:migration" json:"posts_count"`
	// SubscribersCount is not persisted; computed at query time
	SubscribersCount int64 `gorm:"->;-:migration" json:"subscribers_count"`
}

// CreateCommunityInput is the payload accepted when creating a community.
// Server-assigned fields (id, timestamps) are deliberately absent.
type CreateCommunityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToCommunity builds a new, unsaved Community stamped with the given creation time.
func (in CreateCommunityInput) ToCommunity(now time.Time) *Community {
	return &Community{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
	}
}
