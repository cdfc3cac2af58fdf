package sysreptor

import "strconv"

// EnsureDefinedStructure reconciles a raw stored value against its schema
// definition, filling structural gaps with schema defaults. The result
// contains every schema-declared key; stored keys not declared by the schema
// are not carried over (callers merge the raw value back when they want
// undeclared keys preserved, see Formatter.formatObject).
func EnsureDefinedStructure(value any, definition *FieldDefinition) any {
	switch definition.Type {
	case FieldTypeObject:
		raw, _ := value.(map[string]any)
		out := make(map[string]any, len(definition.Fields))
		for _, f := range definition.Fields {
			child, ok := raw[f.ID]
			if !ok {
				out[f.ID] = f.DefaultValue()
				continue
			}
			out[f.ID] = EnsureDefinedStructure(child, f)
		}
		return out
	case FieldTypeList:
		items, ok := value.([]any)
		if !ok {
			return definition.DefaultValue()
		}
		out := make([]any, len(items))
		for i, item := range items {
			if definition.Items != nil {
				out[i] = EnsureDefinedStructure(item, definition.Items)
			} else {
				out[i] = item
			}
		}
		return out
	default:
		if value == nil {
			return definition.DefaultValue()
		}
		return value
	}
}

// FieldVisit is one field encountered while walking a data tree by schema.
type FieldVisit struct {
	Path       []string
	Value      any
	Definition *FieldDefinition
}

// IterateFields walks value according to the object definition and returns
// every field node in declaration order, depth first. Path segments are
// field ids, with list element indices as decimal strings. The value at each
// visit is the raw stored value (possibly nil when absent).
func IterateFields(value any, definition *FieldDefinition, path []string) []FieldVisit {
	var visits []FieldVisit
	iterateFields(value, definition, path, &visits)
	return visits
}

func iterateFields(value any, definition *FieldDefinition, path []string, visits *[]FieldVisit) {
	switch definition.Type {
	case FieldTypeObject:
		raw, _ := value.(map[string]any)
		for _, f := range definition.Fields {
			childPath := append(append([]string{}, path...), f.ID)
			*visits = append(*visits, FieldVisit{Path: childPath, Value: raw[f.ID], Definition: f})
			iterateFields(raw[f.ID], f, childPath, visits)
		}
	case FieldTypeList:
		items, _ := value.([]any)
		if definition.Items == nil {
			return
		}
		for i, item := range items {
			childPath := append(append([]string{}, path...), strconv.Itoa(i))
			*visits = append(*visits, FieldVisit{Path: childPath, Value: item, Definition: definition.Items})
			iterateFields(item, definition.Items, childPath, visits)
		}
	}
}

// SetValueAtPath sets value at the given path inside a nested
// map/slice tree. List segments are decimal indices. Returns false when the
// path does not resolve to an assignable location.
func SetValueAtPath(data any, path []string, value any) bool {
	if len(path) == 0 {
		return false
	}
	cur := data
	for _, seg := range path[:len(path)-1] {
		next, ok := childAt(cur, seg)
		if !ok {
			return false
		}
		cur = next
	}
	last := path[len(path)-1]
	switch node := cur.(type) {
	case map[string]any:
		node[last] = value
		return true
	case []any:
		i, err := strconv.Atoi(last)
		if err != nil || i < 0 || i >= len(node) {
			return false
		}
		node[i] = value
		return true
	}
	return false
}

// GetValueAtPath resolves a path inside a nested map/slice tree.
func GetValueAtPath(data any, path []string) (any, bool) {
	cur := data
	for _, seg := range path {
		next, ok := childAt(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func childAt(node any, seg string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		v, ok := n[seg]
		return v, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(n) {
			return nil, false
		}
		return n[i], true
	}
	return nil, false
}
