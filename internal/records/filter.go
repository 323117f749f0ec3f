package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Quote renders a filter literal, escaping embedded quotes so user
// input cannot break out of the expression.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Eq builds an equality predicate: field = "value".
func Eq(field, value string) string {
	return fmt.Sprintf("%s = %s", field, Quote(value))
}

// Contains builds a substring predicate: field ~ "value".
func Contains(field, value string) string {
	return fmt.Sprintf("%s ~ %s", field, Quote(value))
}

// EqBool builds a boolean predicate: field = true.
func EqBool(field string, v bool) string {
	return fmt.Sprintf("%s = %t", field, v)
}

// Gte builds a numeric predicate: field >= value.
func Gte(field string, v float64) string {
	return fmt.Sprintf("%s >= %s", field, strconv.FormatFloat(v, 'f', -1, 64))
}

// Lte builds a numeric predicate: field <= value.
func Lte(field string, v float64) string {
	return fmt.Sprintf("%s <= %s", field, strconv.FormatFloat(v, 'f', -1, 64))
}

// Group wraps a predicate in parentheses. Empty input stays empty so
// And/Or can still skip it.
func Group(p string) string {
	if p == "" {
		return ""
	}
	return "(" + p + ")"
}

// And joins predicates with &&, skipping empty parts.
func And(parts ...string) string {
	return join(" && ", parts)
}

// Or joins predicates with ||, skipping empty parts.
func Or(parts ...string) string {
	return join(" || ", parts)
}

func join(sep string, parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
