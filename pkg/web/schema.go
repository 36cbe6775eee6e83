package web

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// importSchema validates bulk webhook configuration documents before any
// row is written.
var importSchema = map[string]any{
	"type":     "object",
	"required": []any{"webhooks"},
	"properties": map[string]any{
		"webhooks": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"name", "url", "identifier"},
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "minLength": 1},
					"url":         map[string]any{"type": "string", "format": "uri"},
					"description": map[string]any{"type": "string"},
					"identifier":  map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

func validateImportDocument(document map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(importSchema)
	dataLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}
