package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bazaar/apperr"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// ParamObjectID parses the named route parameter as an ObjectID.
func ParamObjectID(ps httprouter.Params, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(ps.ByName(name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// ReadBody reads at most maxBodyBytes of the request body.
func ReadBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("failed to read request body")
	}
	return b, nil
}

// DecodeJSON decodes the request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// ParseObjectIDs converts hex strings, rejecting the whole list on the first bad entry.
func ParseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperr.Validation("invalid id " + h)
		}
		out = append(out, id)
	}
	return out, nil
}

func ContainsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
