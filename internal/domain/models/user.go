package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, team leads, and team members.
//
// NOTE:
//   - TeamID is a derived back-reference. The authoritative member list
//     lives on the Team document; the membership coordinator keeps the
//     two in sync and TeamID must never be written outside it.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name         string              `bson:"name" json:"name"`
	NameCI       string              `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         Role                `bson:"role" json:"role"`
	TeamID       *primitive.ObjectID `bson:"team_id,omitempty" json:"teamId,omitempty"`

	// TokenVersion is embedded in issued bearer tokens; bumping it on
	// logout invalidates every token issued before the bump.
	TokenVersion int `bson:"token_version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
