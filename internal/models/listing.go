package models

import "strings"

// SortKey selects the ordering of a community listing.
type SortKey string

const (
	SortByID               SortKey = "id"
	SortByCreatedAt        SortKey = "createdat"
	SortByPostsCount       SortKey = "postscount"
	SortBySubscribersCount SortKey = "subscriberscount"
)

// ParseSortKey maps a raw query value onto a SortKey. Matching ignores case and
// surrounding whitespace; anything unrecognised sorts by id.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case SortByCreatedAt:
		return SortByCreatedAt
	case SortByPostsCount:
		return SortByPostsCount
	case SortBySubscribersCount:
		return SortBySubscribersCount
	default:
		return SortByID
	}
}

// String implements fmt.Stringer.
func (k SortKey) String() string {
	return string(k)
}
