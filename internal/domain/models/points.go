package models

import "errors"

// Category classifies how points were earned. The set is closed: anything
// outside it is rejected at the edge rather than coerced into CategoryOther,
// so bad input never silently pollutes a breakdown.
type Category string

const (
	CategoryMessageActivity Category = "messageActivity"
	CategoryGamer           Category = "gamer"
	CategoryArtAndMemes     Category = "artAndMemes"
	CategoryOther           Category = "other"
)

// ErrInvalidCategory is returned when a category string is outside the
// closed category set.
var ErrInvalidCategory = errors.New("invalid points category")

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{CategoryMessageActivity, CategoryGamer, CategoryArtAndMemes, CategoryOther}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryMessageActivity, CategoryGamer, CategoryArtAndMemes, CategoryOther:
		return true
	}
	return false
}

// ParseCategory validates a caller-supplied category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// PointsBreakdown holds per-category point counters for one scope
// (all-time or weekly).
type PointsBreakdown struct {
	MessageActivity int `bson:"message_activity" json:"messageActivity"`
	Gamer           int `bson:"gamer" json:"gamer"`
	ArtAndMemes     int `bson:"art_and_memes" json:"artAndMemes"`
	Other           int `bson:"other" json:"other"`
}

// Add applies a signed delta to one category. Deltas may drive a counter
// negative; deductions are not floored at zero.
func (b *PointsBreakdown) Add(c Category, delta int) {
	switch c {
	case CategoryMessageActivity:
		b.MessageActivity += delta
	case CategoryGamer:
		b.Gamer += delta
	case CategoryArtAndMemes:
		b.ArtAndMemes += delta
	case CategoryOther:
		b.Other += delta
	}
}

// AddAll accumulates another breakdown into this one, category by category.
func (b *PointsBreakdown) AddAll(o PointsBreakdown) {
	b.MessageActivity += o.MessageActivity
	b.Gamer += o.Gamer
	b.ArtAndMemes += o.ArtAndMemes
	b.Other += o.Other
}

// Total returns the sum across all categories.
func (b PointsBreakdown) Total() int {
	return b.MessageActivity + b.Gamer + b.ArtAndMemes + b.Other
}

// Zero resets every category counter.
func (b *PointsBreakdown) Zero() {
	*b = PointsBreakdown{}
}
