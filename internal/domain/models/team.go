package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is the authoritative side of team membership: Members is the
// source of truth and each listed user's TeamID is derived from it.
type Team struct {
	ID        primitive.ObjectID   `bson:"_id" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	NameCI    string               `bson:"name_ci" json:"-"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	CreatedBy primitive.ObjectID   `bson:"created_by" json:"createdBy"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
