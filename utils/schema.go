package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bazaar/apperr"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MustCompileSchema compiles a Draft 2020-12 schema registered under url.
func MustCompileSchema(url, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return c.MustCompile(url)
}

// ValidateJSON checks body against s. Failures come back as a Validation
// error naming the first offending location.
func ValidateJSON(s *jsonschema.Schema, body []byte, what string) error {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := s.Validate(doc); err != nil {
		return apperr.Validation(schemaMessage(err, what))
	}
	return nil
}

// schemaMessage reports the first leaf failure of a schema validation.
func schemaMessage(err error, what string) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return "invalid " + what
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("invalid %s at %s: %s", what, loc, ve.Message)
}
