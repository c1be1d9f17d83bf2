// Package model validates job-posting payloads against a JSON schema before
// they reach storage.
package model

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const jobSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["title", "company"],
	"properties": {
		"title":       {"type": "string", "minLength": 2, "maxLength": 200},
		"company":     {"type": "string", "minLength": 1, "maxLength": 200},
		"location":    {"type": "string", "maxLength": 200},
		"description": {"type": "string", "maxLength": 10000}
	},
	"additionalProperties": false
}`

// ValidateJob validates a job-posting payload against the embedded schema.
func ValidateJob(m map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(jobSchema)
	docLoader := gojsonschema.NewGoLoader(m)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := ""
	for _, e := range res.Errors() {
		msgs += fmt.Sprintf("%s; ", e.String())
	}
	return fmt.Errorf("schema validation failed: %s", msgs)
}
