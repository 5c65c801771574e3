package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"

	"storyagent/pkg/schema"
	"storyagent/pkg/utils"
)

var errNoArray = errors.New("no JSON array found")

// ParseStringArray recovers an array of strings from a model reply. A reply
// that is itself JSON yields its array, or the first array-valued field of a
// top-level object. Otherwise the first well-formed array embedded in the
// text is used. Non-string items keep their JSON text.
func ParseStringArray(reply string) ([]string, error) {
	text := utils.CleanJSON(reply)
	if text == "" {
		return nil, errors.New("empty response")
	}

	if gjson.Valid(text) {
		res := gjson.Parse(text)
		switch {
		case res.IsArray():
			return stringItems(res), nil
		case res.IsObject():
			var found *gjson.Result
			res.ForEach(func(_, value gjson.Result) bool {
				if value.IsArray() {
					found = &value
					return false
				}
				return true
			})
			if found != nil {
				return stringItems(*found), nil
			}
			return nil, errors.New("JSON object has no array field")
		}
	}

	for i := strings.IndexByte(text, '['); i >= 0; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			if res := gjson.ParseBytes(raw); res.IsArray() {
				return stringItems(res), nil
			}
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, errNoArray
}

func stringItems(res gjson.Result) []string {
	arr := res.Array()
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if item.Type == gjson.String {
			out = append(out, item.String())
		} else {
			out = append(out, item.Raw)
		}
	}
	return out
}

// parseStructured applies ParseStringArray and the schema's declared arity.
func parseStructured(backend, reply string, s *jsonschema.Schema) ([]string, error) {
	items, err := ParseStringArray(reply)
	if err != nil {
		return nil, &MalformedResponseError{Backend: backend, Reason: err.Error(), Reply: reply}
	}
	minItems, maxItems := schema.Arity(s)
	if (minItems >= 0 && len(items) < minItems) || (maxItems >= 0 && len(items) > maxItems) {
		return nil, &MalformedResponseError{
			Backend: backend,
			Reason:  fmt.Sprintf("expected %s items, got %d", arityText(minItems, maxItems), len(items)),
			Reply:   reply,
		}
	}
	return items, nil
}

func arityText(minItems, maxItems int) string {
	switch {
	case minItems == maxItems:
		return fmt.Sprint(minItems)
	case maxItems < 0:
		return fmt.Sprintf("at least %d", minItems)
	case minItems < 0:
		return fmt.Sprintf("at most %d", maxItems)
	default:
		return fmt.Sprintf("%d to %d", minItems, maxItems)
	}
}

// schemaInstructions renders the schema as prompt text for backends that
// cannot take it as a request parameter.
func schemaInstructions(system, user string, s *jsonschema.Schema) string {
	return fmt.Sprintf(`%s

%s

IMPORTANT: You MUST respond with ONLY a valid JSON array that matches this schema:
%s

Do not include any text before or after the JSON array. Return ONLY the JSON array.`, system, user, utils.PrettyJSON(s))
}
