package compiler

import "strings"

// joinSelectors flattens a nested selector under its parents. "&" stands
// for the parent; without it the child is a descendant. Parents vary
// slowest: ".a, .b" with ".c, .d" gives .a .c, .a .d, .b .c, .b .d.
// At the root "&" is dropped, and a selector that was only "&" is dropped
// with it.
func joinSelectors(parents []string, selector string) []string {
	children := splitSelectors(selector)

	if len(parents) == 0 {
		out := make([]string, 0, len(children))
		for _, child := range children {
			if sel := strings.TrimSpace(strings.ReplaceAll(child, "&", "")); sel != "" {
				out = append(out, sel)
			}
		}
		return out
	}

	out := make([]string, 0, len(parents)*len(children))
	for _, parent := range parents {
		for _, child := range children {
			if strings.Contains(child, "&") {
				out = append(out, strings.ReplaceAll(child, "&", parent))
			} else {
				out = append(out, parent+" "+child)
			}
		}
	}
	return out
}

// splitSelectors splits a selector list on top-level commas, leaving
// commas inside (), [] and quotes alone.
func splitSelectors(selector string) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(selector); i++ {
		ch := selector[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case ch == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(selector[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, strings.TrimSpace(selector[start:]))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
