package schema

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	s := r.Reflect(v)
	s.Version = ""
	s.ID = ""
	return s
}

// StringArraySchema describes an array of exactly n strings.
func StringArraySchema(n int, description, itemDescription string) *jsonschema.Schema {
	s := generateSchema[[]string]()
	s.Description = description
	if s.Items == nil {
		s.Items = &jsonschema.Schema{Type: "string"}
	}
	s.Items.Description = itemDescription
	count := uint64(n)
	s.MinItems = &count
	s.MaxItems = &count
	return s
}

// SuggestionsSchema is the response contract for next-line suggestions.
func SuggestionsSchema(n int) *jsonschema.Schema {
	return StringArraySchema(n,
		fmt.Sprintf("An array containing exactly %d distinct sentence or line suggestions.", n),
		"A single, coherent sentence or line continuation.",
	)
}

// Arity reports the declared item bounds of an array schema. A missing bound
// is returned as -1.
func Arity(s *jsonschema.Schema) (minItems, maxItems int) {
	minItems, maxItems = -1, -1
	if s == nil {
		return
	}
	if s.MinItems != nil {
		minItems = int(*s.MinItems)
	}
	if s.MaxItems != nil {
		maxItems = int(*s.MaxItems)
	}
	return
}
