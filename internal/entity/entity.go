// Package entity holds the identities the core reasons about: users, items,
// ratings and the lighter-weight shapes (PartialUser) that flow through the
// mean cache without dragging a whole rating vector along.
package entity

// UserID and ItemID are both represented as strings so a single, non-generic
// RatingStore interface can serve every dataset controller: a books
// controller with a numeric user id and an ISBN item id, or a MovieLens
// controller with numeric ids for both, convert at the boundary instead of
// the core carrying a type parameter per dataset.
type UserID string

// ItemID identifies an item the same way UserID identifies a user.
type ItemID string

// User is an opaque identity plus demographic attributes the core never
// inspects.
type User struct {
	ID    UserID
	Attrs map[string]string
}

// Item is an opaque identity plus descriptive attributes the core never
// inspects.
type Item struct {
	ID    ItemID
	Attrs map[string]string
}

// Rating is one (user, item, score) triple.
type Rating struct {
	User  UserID
	Item  ItemID
	Score float64
}

// PartialUser carries just enough to ask a store for a mean: no ratings, no
// attributes.
type PartialUser struct {
	ID UserID
}

// Ratings is a user's (or an item's) rating vector, keyed by the other axis.
type Ratings map[ItemID]float64

// ItemRaters maps the users who rated one item to their score for it.
type ItemRaters map[UserID]float64

// MappedRatings is the result of asking a store who rated a batch of items.
type MappedRatings map[ItemID]ItemRaters
