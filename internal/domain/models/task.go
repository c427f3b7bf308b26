// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses. Pending and Ready are open; Approved and Rejected are
// terminal.
const (
	TaskPending  = "pending"
	TaskReady    = "ready"
	TaskApproved = "approved"
	TaskRejected = "rejected"
)

// Task is a work item volunteers can raise a hand for. Once the
// volunteer set reaches RequiredVolunteers the task becomes Ready and a
// mentor or council member may approve or reject it. Approval pays
// Points to every volunteer through the ledger.
type Task struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title              string               `bson:"title" json:"title"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	Category           string               `bson:"category,omitempty" json:"category,omitempty"`
	Points             int                  `bson:"points" json:"points"`
	RequiredVolunteers int                  `bson:"required_volunteers" json:"required_volunteers"`
	Volunteers         []primitive.ObjectID `bson:"volunteers" json:"volunteers"`
	Status             string               `bson:"status" json:"status"`
	Deadline           *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedBy          primitive.ObjectID   `bson:"created_by" json:"created_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Open reports whether the task still accepts volunteer changes.
func (t *Task) Open() bool {
	return t.Status == TaskPending || t.Status == TaskReady
}

// HasVolunteer reports whether the user already raised a hand.
func (t *Task) HasVolunteer(userID primitive.ObjectID) bool {
	for _, id := range t.Volunteers {
		if id == userID {
			return true
		}
	}
	return false
}
