// Package ledger owns the authoritative per-user point totals and the
// append-only transaction history that justifies each total.
//
// The invariant: a user's total_points always equals the sum of points
// over that user's transactions, and history is never edited or
// reordered, only appended. Corrections are new offsetting
// transactions, never edits.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/sanitize"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrInvalidTransaction is returned for a zero-point delta or empty
	// reason; the request never reaches the store.
	ErrInvalidTransaction = errors.New("transaction must have non-zero points and a reason")
	// ErrVersionConflict is returned when concurrent awarders kept
	// winning the compare-and-swap for every retry attempt. The caller
	// must not assume the transaction was recorded.
	ErrVersionConflict = errors.New("account version conflict; transaction not recorded")
	// ErrBadImageURL is returned for a profile image value that is
	// neither empty nor an absolute http(s) URL.
	ErrBadImageURL = errors.New("profile image must be an absolute http(s) URL or empty")
)

// Known award categories. Reason is free text; these are the ones the
// award form offers.
var KnownReasons = []string{
	"Teamwork",
	"Creative Solution",
	"Leadership Award",
	"Minor Deviation",
	"Late Submission",
	"Major Infraction",
}

// casRetries bounds the read-modify-write loop under contention.
const casRetries = 5

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

// New creates a ledger Store over the users collection. Total and
// history live in the same document so one update writes both.
func New(users *userstore.Store) *Store {
	return &Store{c: users.Collection(), users: users}
}

// ApplyInput describes one point-award or point-deduction command.
type ApplyInput struct {
	UserID  primitive.ObjectID
	Points  int    // non-zero signed delta
	Reason  string // non-empty after sanitization
	ActorID primitive.ObjectID
	Key     string    // optional idempotency key; duplicate keys collapse to one transaction
	At      time.Time // optional caller-supplied timestamp; zero means now
}

// Apply validates the command, appends a transaction, and updates the
// total as a single atomic write.
//
// Atomicity: the update filter requires total_points to still hold the
// value just read, so the $inc/$push pair either both land on that
// exact state or the update matches nothing and we retry. There are no
// partial ledger states. After casRetries lost races Apply gives up
// with ErrVersionConflict and the account is untouched.
//
// When Key is set and the account already holds a transaction with that
// key, Apply is a no-op returning the current account, so duplicate
// submissions collapse.
func (s *Store) Apply(ctx context.Context, in ApplyInput) (*models.User, error) {
	reason := sanitize.Text(in.Reason)
	if in.Points == 0 || reason == "" {
		return nil, ErrInvalidTransaction
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		u, err := s.users.GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if u.HasTransactionKey(in.Key) {
			return u, nil
		}

		now := time.Now().UTC()
		txn := models.Transaction{
			Key:       in.Key,
			Timestamp: in.At,
			Points:    in.Points,
			Reason:    reason,
			ActorID:   in.ActorID,
		}
		if txn.Timestamp.IsZero() {
			txn.Timestamp = now
		}

		filter := bson.M{"_id": in.UserID, "total_points": u.TotalPoints}
		if in.Key != "" {
			filter["transactions.key"] = bson.M{"$ne": in.Key}
		}

		res, err := s.c.UpdateOne(ctx, filter, bson.M{
			"$inc":  bson.M{"total_points": in.Points},
			"$push": bson.M{"transactions": txn},
			"$set":  bson.M{"updated_at": now},
		})
		if err != nil {
			return nil, fmt.Errorf("apply transaction: %w", err)
		}
		if res.MatchedCount == 1 {
			u.TotalPoints += in.Points
			u.Transactions = append(u.Transactions, txn)
			u.UpdatedAt = now
			return u, nil
		}
		// Lost the race (or the key landed concurrently); re-read and retry.
	}
	return nil, ErrVersionConflict
}

// SetProfileImage persists a profile image URL as a merge write that
// cannot disturb total_points or transactions. An empty url clears the
// image.
func (s *Store) SetProfileImage(ctx context.Context, userID primitive.ObjectID, rawURL string) error {
	if rawURL != "" {
		parsed, err := url.Parse(rawURL)
		if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return ErrBadImageURL
		}
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"profile_image_url": rawURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set profile image: %w", err)
	}
	if res.MatchedCount == 0 {
		return userstore.ErrNotFound
	}
	return nil
}

// CategoryTotal aggregates one reason category over a ledger.
type CategoryTotal struct {
	Points int `json:"points"`
	Count  int `json:"count"`
}

// Summarize totals a ledger per known reason category. Transactions
// with free-text reasons outside the known set are ignored, matching
// the profile view.
func Summarize(txns []models.Transaction) map[string]CategoryTotal {
	out := make(map[string]CategoryTotal, len(KnownReasons))
	for _, r := range KnownReasons {
		out[r] = CategoryTotal{}
	}
	for _, t := range txns {
		ct, ok := out[t.Reason]
		if !ok {
			continue
		}
		ct.Points += t.Points
		ct.Count++
		out[t.Reason] = ct
	}
	return out
}
