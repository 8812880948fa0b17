package schema

import "fmt"

// paramSchema describes the single numeric parameter a setter action takes.
type paramSchema struct {
	param string
	min   float64
	max   float64
}

// actionSchemas lists the actions that carry parameters.
var actionSchemas = map[string]paramSchema{
	"set_brightness":  {param: "brightness", min: 0, max: 100},
	"set_volume":      {param: "volume", min: 0, max: 100},
	"set_temperature": {param: "temperature", min: 5, max: 35},
}

// RequiredParam returns the parameter name an action needs, if any.
func RequiredParam(action string) (string, bool) {
	s, ok := actionSchemas[action]
	return s.param, ok
}

// Range returns the accepted interval for an action's parameter in strict mode.
func Range(action string) (minimum, maximum float64, ok bool) {
	s, ok := actionSchemas[action]
	return s.min, s.max, ok
}

func (s paramSchema) document(mode Mode) []byte {
	bounds := ""
	if mode == Strict {
		bounds = fmt.Sprintf(`, "minimum": %g, "maximum": %g`, s.min, s.max)
	}
	return []byte(fmt.Sprintf(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": [%q],
		"properties": {
			%q: {"type": "number"%s}
		}
	}`, s.param, s.param, bounds))
}
