package grading

import (
	"sort"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

const (
	schemaName        = "grading_result"
	schemaDescription = "Structured evaluation of a sales training call"
)

var resultSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[grading.Result](&jsonschema.ForOptions{})
	if err != nil {
		return nil, err
	}

	statuses := make([]any, 0, len(grading.LeadStatuses))
	for _, status := range grading.LeadStatuses {
		statuses = append(statuses, string(status))
	}
	if lead := s.Properties["lead_status"]; lead != nil {
		lead.Enum = statuses
	}

	return strict(s), nil
})

var resolvedSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := resultSchema()
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// ResultSchema returns the JSON schema of grading.Result in the strict form
// structured outputs require.
func ResultSchema() (*jsonschema.Schema, error) {
	return resultSchema()
}

// strict closes every object and marks all of its properties required.
// Arrays are made non-nullable.
func strict(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}

	if s.Type == "" && len(s.Types) > 0 {
		for _, t := range s.Types {
			if t != "null" {
				s.Type = t
				break
			}
		}
		s.Types = nil
	}

	switch s.Type {
	case "array":
		s.Items = strict(s.Items)
	case "object":
		s.AdditionalProperties = &jsonschema.Schema{Not: &jsonschema.Schema{}}
		required := make([]string, 0, len(s.Properties))
		for name, prop := range s.Properties {
			s.Properties[name] = strict(prop)
			required = append(required, name)
		}
		sort.Strings(required)
		s.Required = required
	}
	return s
}
