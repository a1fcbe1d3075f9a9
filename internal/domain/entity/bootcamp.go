package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON Point with the formatted address parts the geocoder
// resolved alongside it.
type GeoPoint struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

// Bootcamp is owned by exactly one user. AverageCost and AverageRating are
// denormalized aggregates recomputed from child courses and reviews.
// OwnerLocked backs the partial unique index that enforces the
// one-bootcamp-per-non-admin-owner rule.
type Bootcamp struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Slug          string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Description   string             `bson:"description" json:"description"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"`
	Location      *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []string           `bson:"careers,omitempty" json:"careers,omitempty"`
	Photo         string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Housing       bool               `bson:"housing" json:"housing"`
	JobAssistance bool               `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi" json:"acceptGi"`
	AverageCost   float64            `bson:"averageCost" json:"averageCost"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	OwnerLocked   bool               `bson:"owner_locked,omitempty" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
