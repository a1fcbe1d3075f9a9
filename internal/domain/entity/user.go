package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Role upgrades go through the upgrade-request flow; only admins
// assign roles directly.
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

const DefaultUserImage = "/images/placeholder.jpg"

// User is stored in the "users" collection. The password hash and reset token
// never leave the API.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`
	Role                string             `bson:"role" json:"role"`
	Password            string             `bson:"password,omitempty" json:"-"`
	Image               string             `bson:"image" json:"image"`
	IsThirdPartySignIn  bool               `bson:"isThirdPartySignIn,omitempty" json:"isThirdPartySignIn,omitempty"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire time.Time          `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidRole reports whether r is one of the user role enum values.
func ValidRole(r string) bool {
	return r == RoleUser || r == RolePublisher || r == RoleAdmin
}
