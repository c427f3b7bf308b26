package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/system/normalize"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when the referenced account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrMalformedDoc is returned when a stored document fails boundary
	// validation; malformed records never reach ranking logic.
	ErrMalformedDoc = errors.New("malformed account document")

	errBadRole = errors.New(`role must be "student"|"mentor"|"council"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Collection exposes the underlying collection for the ledger store,
// which shares the users collection so total and history live in one
// document and can be written atomically.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// validateDoc rejects documents missing required fields. Loosely-typed
// records from earlier clients are filtered here instead of propagating
// empty fields into ranking.
func validateDoc(u *models.User) error {
	if u.ID.IsZero() || u.Name == "" || !models.ValidRole(u.Role) {
		return ErrMalformedDoc
	}
	return nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := validateDoc(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := validateDoc(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// The ledger starts empty with a zero total.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Name = normalize.DisplayName(u.Name, u.Email)
	u.NameCI = text.Fold(u.Name)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if !models.ValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	u.TotalPoints = 0
	u.Transactions = []models.Transaction{}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// List returns a point-in-time snapshot of every account, sorted by
// creation time ascending. Ranking uses a stable sort on this order, so
// equal totals resolve to the longer-standing account. Malformed
// documents are skipped rather than failing the whole snapshot.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		if validateDoc(&u) != nil {
			continue
		}
		out = append(out, u)
	}
	return out, cur.Err()
}

// EmailExists checks whether an email is already registered.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
