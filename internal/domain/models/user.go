// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles for registered participants. A user's role is set at signup and
// only an administrative action may change it afterwards.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleCouncil = "council"
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleMentor, RoleCouncil:
		return true
	}
	return false
}

// User represents one registered participant: students, mentors, and
// council members.
//
// TotalPoints is the single source of truth for a user's standing and
// always equals the sum of Points over Transactions. Both fields are
// written together in one atomic update by the ledger store; no other
// code path may mutate them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"` // student | mentor | council
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`

	TotalPoints  int           `bson:"total_points" json:"total_points"`
	Transactions []Transaction `bson:"transactions" json:"transactions"`

	ProfileImageURL string `bson:"profile_image_url,omitempty" json:"profile_image_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Transaction is one point-award or point-deduction event, immutable
// once appended to a user's ledger.
type Transaction struct {
	Key       string             `bson:"key,omitempty" json:"key,omitempty"` // idempotency key
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Points    int                `bson:"points" json:"points"` // non-zero signed delta
	Reason    string             `bson:"reason" json:"reason"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
}

// HasTransactionKey reports whether the user's ledger already holds a
// transaction with the given idempotency key.
func (u *User) HasTransactionKey(key string) bool {
	if key == "" {
		return false
	}
	for _, t := range u.Transactions {
		if t.Key == key {
			return true
		}
	}
	return false
}
