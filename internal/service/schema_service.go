package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/graphsage/server/internal/graphql"
)

// SchemaService fetches the endpoint's GraphQL schema and renders a compact
// entity/field diagram suitable for prompting. The rendered diagram is cached
// after the first call: schema content cannot change within a run, and
// re-deriving it on every repair attempt just burns latency.
type SchemaService interface {
	Describe(ctx context.Context) (string, error)
	// Invalidate drops the cache so the next Describe refetches.
	Invalidate()
}

type schemaService struct {
	gql *graphql.Client

	mu     sync.Mutex
	cached string
}

// NewSchemaService wires the GraphQL client.
func NewSchemaService(gql *graphql.Client) SchemaService {
	return &schemaService{gql: gql}
}

// Describe returns the cached diagram, introspecting on first use.
func (s *schemaService) Describe(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, nil
	}

	schema, err := s.gql.Introspect(ctx)
	if err != nil {
		return "", fmt.Errorf("schema introspection failed: %w", err)
	}

	s.cached = renderDiagram(schema)
	return s.cached, nil
}

func (s *schemaService) Invalidate() {
	s.mu.Lock()
	s.cached = ""
	s.mu.Unlock()
}

// renderDiagram flattens the introspection payload into SDL-style type
// blocks. Introspection meta types and scalars are skipped; root operation
// types come first so the model sees the entry points immediately.
func renderDiagram(schema *graphql.Schema) string {
	roots := map[string]bool{}
	if schema.QueryType != nil {
		roots[schema.QueryType.Name] = true
	}
	if schema.MutationType != nil {
		roots[schema.MutationType.Name] = true
	}

	var rootTypes, objectTypes []graphql.Type
	for _, t := range schema.Types {
		if strings.HasPrefix(t.Name, "__") || len(t.Fields) == 0 {
			continue
		}
		if t.Kind != "OBJECT" && t.Kind != "INTERFACE" {
			continue
		}
		if roots[t.Name] {
			rootTypes = append(rootTypes, t)
		} else {
			objectTypes = append(objectTypes, t)
		}
	}
	sort.Slice(objectTypes, func(i, j int) bool { return objectTypes[i].Name < objectTypes[j].Name })

	var sb strings.Builder
	for _, t := range append(rootTypes, objectTypes...) {
		fmt.Fprintf(&sb, "type %s {\n", t.Name)
		for _, f := range t.Fields {
			fmt.Fprintf(&sb, "  %s: %s\n", f.Name, f.Type.String())
		}
		sb.WriteString("}\n\n")
	}
	return strings.TrimSpace(sb.String())
}
