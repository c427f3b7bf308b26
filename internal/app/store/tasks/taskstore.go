// Package taskstore persists community tasks and their volunteer
// rosters through the pending → ready → approved/rejected lifecycle.
package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/system/sanitize"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the referenced task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTask is returned when a task fails field validation.
	ErrInvalidTask = errors.New("task must have a title, positive points, and at least one required volunteer")
	// ErrTaskClosed is returned when volunteering for a task that has
	// already been approved or rejected.
	ErrTaskClosed = errors.New("task is no longer open for volunteers")
	// ErrTaskFull is returned when joining a task whose roster already
	// holds the required number of volunteers.
	ErrTaskFull = errors.New("task already has the required number of volunteers")
	// ErrStatusConflict is returned when a status transition finds the
	// task no longer in the expected state.
	ErrStatusConflict = errors.New("task status changed; transition not applied")
)

// casRetries bounds the volunteer toggle retry loop under contention.
const casRetries = 5

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create validates and inserts a new task in the pending state.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.Title = sanitize.Text(t.Title)
	t.Description = sanitize.Text(t.Description)
	t.Category = sanitize.Text(t.Category)
	if t.Title == "" || t.Points <= 0 || t.RequiredVolunteers < 1 {
		return models.Task{}, ErrInvalidTask
	}

	t.ID = primitive.NewObjectID()
	t.Status = models.TaskPending
	t.Volunteers = []primitive.ObjectID{}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Task
	for cur.Next(ctx) {
		var t models.Task
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, cur.Err()
}

// ToggleVolunteer adds userID to the roster, or removes it when already
// present. The roster and status are recomputed together: a full roster
// moves the task to ready, an emptied slot moves it back to pending.
//
// The write carries the roster just read in its filter, so two students
// racing for the last slot cannot both land; the loser retries against
// the fresh roster and gets ErrTaskFull.
func (s *Store) ToggleVolunteer(ctx context.Context, taskID, userID primitive.ObjectID) (*models.Task, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		t, err := s.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !t.Open() {
			return nil, ErrTaskClosed
		}

		var roster []primitive.ObjectID
		if t.HasVolunteer(userID) {
			roster = make([]primitive.ObjectID, 0, len(t.Volunteers)-1)
			for _, v := range t.Volunteers {
				if v != userID {
					roster = append(roster, v)
				}
			}
		} else {
			if len(t.Volunteers) >= t.RequiredVolunteers {
				return nil, ErrTaskFull
			}
			roster = append(append([]primitive.ObjectID{}, t.Volunteers...), userID)
		}

		status := models.TaskPending
		if len(roster) >= t.RequiredVolunteers {
			status = models.TaskReady
		}

		now := time.Now().UTC()
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": taskID, "status": t.Status, "volunteers": t.Volunteers},
			bson.M{"$set": bson.M{"volunteers": roster, "status": status, "updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("toggle volunteer: %w", err)
		}
		if res.MatchedCount == 1 {
			t.Volunteers = roster
			t.Status = status
			t.UpdatedAt = now
			return t, nil
		}
		// Roster changed underneath us; re-read and retry.
	}
	return nil, ErrStatusConflict
}

// SetStatus transitions a task from one status to another as a single
// conditional write. A task no longer in the from state yields
// ErrStatusConflict, so double approvals and approve/reject races
// resolve to exactly one winner.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) (*models.Task, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return nil, fmt.Errorf("set task status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusConflict
	}
	return s.GetByID(ctx, id)
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCompletedFor counts the approved tasks a user volunteered on.
// Badge thresholds are driven by this number.
func (s *Store) CountCompletedFor(ctx context.Context, userID primitive.ObjectID) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"status":     models.TaskApproved,
		"volunteers": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return int(n), nil
}
