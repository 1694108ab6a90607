// Package catalog loads, validates and indexes the scheme catalog from
// JSON snapshots (local file or S3 object). The engine itself never reads
// the catalog source; callers materialize a snapshot here and hand the
// scheme slice to the recommendation pipeline.
package catalog

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// schemeSchema is the JSON schema every catalog record must satisfy.
// Records that fail validation are skipped with a report entry rather
// than aborting the whole load, so one malformed record cannot take the
// catalog offline.
const schemeSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"ministry": {"type": "string"},
		"level": {"type": "string", "enum": ["central", "national", "state", ""]},
		"category": {"type": "string"},
		"benefits": {"type": "string"},
		"documents": {"type": "array", "items": {"type": "string"}},
		"how_to_apply": {"type": "string"},
		"apply_link": {"type": "string"},
		"popularity": {"type": "number", "minimum": 0, "maximum": 1},
		"is_active": {"type": "boolean"},
		"eligibility_rules": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "operator"],
				"properties": {
					"field": {"type": "string", "minLength": 1},
					"operator": {"type": "string", "enum": ["range", "equals", "in", "flag"]},
					"value": {"type": "string"},
					"values": {"type": "array", "items": {"type": "string"}},
					"min": {"type": "integer"},
					"max": {"type": "integer"}
				}
			}
		}
	}
}`

var compiledSchema *gojsonschema.Schema

func init() {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemeSchema))
	if err != nil {
		panic("catalog: invalid scheme schema: " + err.Error())
	}
	compiledSchema = schema
}

// validateRecord checks one raw catalog record against the scheme schema
// and returns the field-level problems, if any.
func validateRecord(raw []byte) ([]string, error) {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
