package dogapi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	schemaImage = `{
  "type": "object",
  "required": ["message", "status"],
  "properties": {
    "message": {"type": "string"},
    "status": {"type": "string", "minLength": 1}
  }
}`

	schemaBreedList = `{
  "type": "object",
  "required": ["message", "status"],
  "properties": {
    "message": {
      "type": "object",
      "additionalProperties": {"type": "array", "items": {"type": "string"}}
    },
    "status": {"type": "string", "minLength": 1}
  }
}`

	schemaImages = `{
  "type": "object",
  "required": ["message", "status"],
  "properties": {
    "message": {"type": "array", "items": {"type": "string"}},
    "status": {"type": "string", "minLength": 1}
  }
}`
)

type envelopeSchemas struct {
	image     *jsonschema.Schema
	breedList *jsonschema.Schema
	images    *jsonschema.Schema
}

var (
	envelopesOnce sync.Once
	envelopes     *envelopeSchemas
	envelopesErr  error
)

func loadEnvelopes() (*envelopeSchemas, error) {
	envelopesOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		compile := func(name, src string) *jsonschema.Schema {
			if envelopesErr != nil {
				return nil
			}
			url := "mem://dogapi/" + name + ".json"
			if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
				envelopesErr = fmt.Errorf("add schema %s: %w", name, err)
				return nil
			}
			s, err := compiler.Compile(url)
			if err != nil {
				envelopesErr = fmt.Errorf("compile schema %s: %w", name, err)
				return nil
			}
			return s
		}

		es := &envelopeSchemas{
			image:     compile("image", schemaImage),
			breedList: compile("breed-list", schemaBreedList),
			images:    compile("images", schemaImages),
		}
		if envelopesErr == nil {
			envelopes = es
		}
	})
	return envelopes, envelopesErr
}

// validateEnvelope checks a decoded JSON document against schema. The
// returned error wraps ErrInvalidPayload.
func validateEnvelope(schema *jsonschema.Schema, doc any) error {
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidPayload, leafMessage(verr))
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// leafMessage returns the most specific cause of a validation error.
func leafMessage(err *jsonschema.ValidationError) string {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	loc := err.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + err.Message
}
