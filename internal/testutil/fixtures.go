package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given role and department and
// an empty ledger.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role, department string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		Role:         role,
		Department:   department,
		TotalPoints:  0,
		Transactions: []models.Transaction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateStudent inserts a test student.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleStudent, "")
}

// CreateMentor inserts a test mentor.
func (f *Fixtures) CreateMentor(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleMentor, "")
}

// CreateUserWithLedger inserts a user whose ledger already holds the
// given transactions; total_points is derived from their sum so the
// ledger invariant holds from the start.
func (f *Fixtures) CreateUserWithLedger(ctx context.Context, name, email, role string, txns []models.Transaction) models.User {
	f.t.Helper()

	total := 0
	for _, tx := range txns {
		total += tx.Points
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		Role:         role,
		TotalPoints:  total,
		Transactions: txns,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user with ledger: %v", err)
	}
	return u
}

// CreateTask inserts a test task created by the given user.
func (f *Fixtures) CreateTask(ctx context.Context, title string, points, required int, createdBy primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:                 primitive.NewObjectID(),
		Title:              title,
		Description:        "Test task description",
		Category:           "Teamwork",
		Points:             points,
		RequiredVolunteers: required,
		Volunteers:         []primitive.ObjectID{},
		Status:             models.TaskPending,
		CreatedBy:          createdBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}
