// internal/server/schema.go
package server

import (
	"reflect"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
)

// inputSchema describes a params struct from its json and description tags.
// Fields without omitempty are required; embedded structs are flattened.
func inputSchema(params interface{}) protocol.InputSchema {
	schema := protocol.InputSchema{
		Type:       protocol.Object,
		Properties: map[string]interface{}{},
	}
	addProperties(&schema, reflect.TypeOf(params))
	return schema
}

func addProperties(schema *protocol.InputSchema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			addProperties(schema, f.Type)
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		prop := map[string]interface{}{"type": jsonType(f.Type.Kind())}
		if d := f.Tag.Get("description"); d != "" {
			prop["description"] = d
		}
		schema.Properties[name] = prop
		if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}
}

func jsonType(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "string"
	}
}
