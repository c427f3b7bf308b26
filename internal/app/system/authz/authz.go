// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false. Callers can
// trust that ok=true means a valid, authenticated user with a valid
// ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "student"
}

// IsMentor reports whether the current request's user is a mentor.
func IsMentor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "mentor"
}

// IsCouncil reports whether the current request's user is a council member.
func IsCouncil(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "council"
}

// CanAwardPoints reports whether the current user may issue point awards
// or deductions. Only mentors and council members can.
func CanAwardPoints(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "mentor" || role == "council")
}

// CanManageTasks reports whether the current user may create, approve,
// reject, or remove tasks. Same set as CanAwardPoints.
func CanManageTasks(r *http.Request) bool {
	return CanAwardPoints(r)
}
