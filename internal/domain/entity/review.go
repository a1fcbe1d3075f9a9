package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review belongs to one bootcamp and one user; the (bootcamp, user) pair is
// unique. Its rating feeds the bootcamp's averageRating aggregate.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Text      string             `bson:"text" json:"text"`
	Rating    float64            `bson:"rating" json:"rating"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
