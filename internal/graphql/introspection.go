package graphql

import (
	"context"
	"encoding/json"
	"fmt"
)

// introspectionQuery asks for the subset of the standard introspection result
// we actually render: named types, their fields and field types. Arguments
// and deprecation metadata are deliberately left out to keep diagrams small.
const introspectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    types {
      kind
      name
      fields(includeDeprecated: false) {
        name
        type { ...TypeRef }
      }
    }
  }
}
fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType { kind name }
    }
  }
}`

// Schema is the decoded __schema introspection payload.
type Schema struct {
	QueryType    *NamedType `json:"queryType"`
	MutationType *NamedType `json:"mutationType"`
	Types        []Type     `json:"types"`
}

// NamedType carries just a type name (used for the root operation types).
type NamedType struct {
	Name string `json:"name"`
}

// Type is one schema type with its fields.
type Type struct {
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is one field of an object type.
type Field struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// TypeRef is a possibly-wrapped type reference (NON_NULL / LIST chains).
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// String renders the reference in SDL notation, e.g. "[Round!]!".
func (t TypeRef) String() string {
	switch t.Kind {
	case "NON_NULL":
		if t.OfType == nil {
			return "!"
		}
		return t.OfType.String() + "!"
	case "LIST":
		if t.OfType == nil {
			return "[]"
		}
		return "[" + t.OfType.String() + "]"
	default:
		return t.Name
	}
}

// Introspect fetches the endpoint's schema via the standard introspection
// query. Endpoints that disable introspection surface here as a GraphQL
// error, which we promote to a plain error—there is nothing to repair.
func (c *Client) Introspect(ctx context.Context) (*Schema, error) {
	resp, err := c.Execute(ctx, introspectionQuery, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql: introspection rejected: %s", resp.Errors[0])
	}

	var payload struct {
		Schema Schema `json:"__schema"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("graphql: decode introspection: %w", err)
	}
	return &payload.Schema, nil
}
