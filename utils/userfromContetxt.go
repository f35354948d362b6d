package utils

import (
	"net/http"

	"bazaar/globals"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetUserIDFromRequest(r *http.Request) string {
	ctx := r.Context()
	requestingUserID, ok := ctx.Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetRoleFromRequest(r *http.Request) string {
	role, _ := r.Context().Value(globals.RoleKey).(string)
	return role
}

// GetUserObjectID returns the authenticated user's id as an ObjectID.
func GetUserObjectID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(GetUserIDFromRequest(r))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
