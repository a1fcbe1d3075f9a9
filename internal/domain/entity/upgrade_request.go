package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusPending is the only status an upgrade request ever holds; accept and
// reject both consume the record instead of resolving it in place.
const StatusPending = "pending"

// UpgradeRequest asks for a user's promotion to a target role. One per user.
type UpgradeRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Role      string             `bson:"role" json:"role"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
