package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bazaar/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateRandomDigitString(t *testing.T) {
	s := GenerateRandomDigitString(7)
	assert.Len(t, s, 7)
	assert.Regexp(t, `^\d{7}$`, s)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"phone", "android"}, SplitTags(" Phone, android ,,PHONE"))
	assert.Empty(t, SplitTags(""))
}

func TestWithoutIDs(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	assert.Equal(t, []primitive.ObjectID{a, c}, WithoutIDs([]primitive.ObjectID{a, b, c}, []primitive.ObjectID{b}))
	assert.Empty(t, WithoutIDs([]primitive.ObjectID{a}, []primitive.ObjectID{a}))
}

func TestRespondWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithAppError(rec, apperr.External("payment gateway initialisation failed", M{"status": "FAILED"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "payment gateway initialisation failed", body["message"])
	assert.Equal(t, map[string]interface{}{"status": "FAILED"}, body["error"])

	rec = httptest.NewRecorder()
	RespondWithAppError(rec, errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}
