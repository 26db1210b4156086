package resource

import (
	"encoding/json"
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/harrylevesque/ecoadmin/internal/models"
)

// FilterAll is the filter key that keeps every record.
const FilterAll = "All"

// IsAll reports whether key selects the whole collection.
func IsAll(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || strings.EqualFold(key, FilterAll)
}

// ApplyFilter keeps the records whose status matches key, case-insensitively.
func ApplyFilter(c models.Collection, key string) models.Collection {
	return ApplyFilterOn(c, "status", key)
}

// ApplyFilterOn is ApplyFilter against an arbitrary field. "All" returns c
// itself; any other key returns a new slice in the original order.
func ApplyFilterOn(c models.Collection, field, key string) models.Collection {
	if IsAll(key) {
		return c
	}
	want := strings.ToLower(strings.TrimSpace(key))
	out := make(models.Collection, 0, len(c))
	for _, rec := range c {
		if rec.Status(field) == want {
			out = append(out, rec)
		}
	}
	return out
}

// Query is a compiled boolean expression over record fields, for example
// `status == "Pending" && userId == "u1"` or `name contains "Falls"`.
type Query struct {
	source  string
	program *exprvm.Program
}

// CompileQuery compiles src. Fields absent from a record evaluate to nil.
func CompileQuery(src string) (*Query, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	program, err := exprlang.Compile(src,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling query %q: %w", src, err)
	}
	return &Query{source: src, program: program}, nil
}

// String returns the query source.
func (q *Query) String() string {
	if q == nil {
		return ""
	}
	return q.source
}

// Match evaluates the query against one record. Evaluation errors count as
// a miss.
func (q *Query) Match(rec models.Record) bool {
	if q == nil {
		return true
	}
	out, err := exprlang.Run(q.program, queryEnv(rec))
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// Select keeps the records q matches. A nil query returns c itself.
func Select(c models.Collection, q *Query) models.Collection {
	if q == nil {
		return c
	}
	out := make(models.Collection, 0, len(c))
	for _, rec := range c {
		if q.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// queryEnv exposes numbers as float64 so `durationDays > 3` compares numerically.
func queryEnv(rec models.Record) map[string]any {
	env := make(map[string]any, len(rec))
	for k, v := range rec {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				env[k] = f
				continue
			}
		}
		env[k] = v
	}
	return env
}
