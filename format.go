package sysreptor

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/5urpriser/sysreptor/internal/cvss"
	"github.com/5urpriser/sysreptor/internal/cwe"
)

// contactFields is the fixed subset of member keys projected into formatted
// user values.
var contactFields = []string{
	"id", "name", "title_before", "first_name", "middle_name",
	"last_name", "title_after", "email", "phone", "mobile",
}

// rolePriority orders member roles for display: lead before pentester before
// reviewer before everything else.
func rolePriority(role string) int {
	switch role {
	case "lead":
		return 0
	case "pentester":
		return 1
	case "reviewer":
		return 2
	default:
		return 10
	}
}

// Formatter resolves raw stored field values into display-ready structures.
// Formatting is pure and total: malformed values and resolution misses
// degrade to documented sentinel values instead of failing. The only I/O is
// the optional user-store fallback for unresolved user references.
type Formatter struct {
	users UserStore
}

// NewFormatter creates a Formatter. The user store may be nil, in which case
// user references that match no candidate resolve to nil.
func NewFormatter(users UserStore) *Formatter {
	return &Formatter{users: users}
}

// FormatValue formats one field value according to its definition.
// members are candidate records for resolving user references.
func (f *Formatter) FormatValue(value any, definition *FieldDefinition, members []any) any {
	switch definition.Type {
	case FieldTypeEnum:
		return f.formatEnum(value, definition)
	case FieldTypeCvss:
		return f.formatCvss(value)
	case FieldTypeCwe:
		return f.formatCwe(value)
	case FieldTypeUser:
		return f.formatUser(value, members)
	case FieldTypeList:
		return f.formatList(value, definition, members)
	case FieldTypeObject:
		return f.FormatObject(value, definition, members, false)
	default:
		return value
	}
}

// FormatObject reconciles a raw object against its field definitions and
// formats every declared child. Three ordered passes: default-fill from the
// schema, shallow override with the raw value for undeclared keys, then
// recursive formatting. When requireID is set and the raw value carries no
// id, a random unique id is synthesized.
func (f *Formatter) FormatObject(value any, definition *FieldDefinition, members []any, requireID bool) map[string]any {
	raw, _ := value.(map[string]any)
	reconciled, _ := EnsureDefinedStructure(value, definition).(map[string]any)

	out := make(map[string]any, len(raw)+len(reconciled))
	for k, v := range raw {
		out[k] = v
	}
	for k, v := range reconciled {
		out[k] = v
	}

	for _, field := range definition.Fields {
		out[field.ID] = f.FormatValue(out[field.ID], field, members)
	}

	if requireID {
		if _, ok := out["id"]; !ok {
			out["id"] = uuid.NewString()
		}
	}
	return out
}

// formatEnum resolves the choice matching the stored value. Unknown values
// resolve to the empty {value, label} sentinel, never an error.
func (f *Formatter) formatEnum(value any, definition *FieldDefinition) map[string]any {
	for _, choice := range definition.Choices {
		if choice.Value == value {
			return map[string]any{"value": choice.Value, "label": choice.Label}
		}
	}
	return map[string]any{"value": "", "label": ""}
}

// formatCvss shapes the CVSS engine output: metric breakdown plus vector,
// two-decimal score, severity level, and level ordinal.
func (f *Formatter) formatCvss(value any) map[string]any {
	vector, _ := value.(string)
	metrics := cvss.CalculateMetrics(vector)
	score := 0.0
	if final, ok := metrics["final"].(map[string]any); ok {
		score, _ = final["score"].(float64)
	}
	out := make(map[string]any, len(metrics)+4)
	for k, v := range metrics {
		out[k] = v
	}
	out["vector"] = value
	out["score"] = formatScore(score)
	out["level"] = string(cvss.LevelFromScore(score))
	out["level_number"] = cvss.LevelNumberFromScore(score)
	return out
}

// formatScore renders a score rounded to two decimals with at least one
// decimal place, so integral scores read "9.0", not "9".
func formatScore(score float64) string {
	s := strconv.FormatFloat(math.Round(score*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatCwe merges the static table entry over a null-defaulted base record,
// so the shape is complete even when the id is unknown.
func (f *Formatter) formatCwe(value any) map[string]any {
	out := map[string]any{
		"id":          nil,
		"name":        nil,
		"description": nil,
		"value":       value,
	}
	if key, ok := value.(string); ok {
		if def, found := cwe.Lookup(key); found {
			out["id"] = def.ID
			out["name"] = def.Name
			out["description"] = def.Description
		}
	}
	return out
}

// formatList maps the formatter over every element with the list's item
// definition. Element count and order are preserved.
func (f *Formatter) formatList(value any, definition *FieldDefinition, members []any) []any {
	items, _ := value.([]any)
	out := make([]any, len(items))
	for i, item := range items {
		if definition.Items != nil {
			out[i] = f.FormatValue(item, definition.Items, members)
		} else {
			out[i] = item
		}
	}
	return out
}

// formatUser resolves a user reference to a contact record, or nil when the
// reference cannot be resolved. Accepted shapes: an already-materialized
// member record, a bare id matched against the candidate list first and the
// user store second, or an empty value.
func (f *Formatter) formatUser(value any, members []any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return formatMemberRecord(v)
	case *ProjectMember:
		if v == nil {
			return nil
		}
		return formatMemberRecord(v.asMap())
	case ProjectMember:
		return formatMemberRecord(v.asMap())
	case string:
		for _, candidate := range members {
			record := memberRecord(candidate)
			if record == nil {
				continue
			}
			if id, ok := record["id"]; ok && fmt.Sprint(id) == v {
				return formatMemberRecord(record)
			}
		}
		if f.users != nil {
			member, err := f.users.MemberByID(v)
			if err == nil && member != nil {
				record := member.asMap()
				record["roles"] = []any{}
				return formatMemberRecord(record)
			}
			if err != nil && !errors.Is(err, ErrUserNotFound) {
				// Store failures degrade like misses; user fields never
				// abort a render.
				return nil
			}
		}
		return nil
	default:
		return nil
	}
}

// memberRecord normalizes a candidate entry to a raw map.
func memberRecord(candidate any) map[string]any {
	switch c := candidate.(type) {
	case map[string]any:
		return c
	case *ProjectMember:
		if c == nil {
			return nil
		}
		return c.asMap()
	case ProjectMember:
		return c.asMap()
	}
	return nil
}

// formatMemberRecord projects a member record to the fixed contact-field
// subset plus a role list sorted by display priority, ties broken by natural
// order.
func formatMemberRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(contactFields)+1)
	for _, key := range contactFields {
		out[key] = record[key]
	}
	out["roles"] = sortedRoles(record["roles"])
	return out
}

// sortedRoles deduplicates and sorts a raw role list by priority.
func sortedRoles(value any) []any {
	items, _ := value.([]any)
	seen := map[string]bool{}
	var roles []string
	for _, item := range items {
		role, ok := item.(string)
		if !ok || role == "" || seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	sort.SliceStable(roles, func(i, j int) bool {
		pi, pj := rolePriority(roles[i]), rolePriority(roles[j])
		if pi != pj {
			return pi < pj
		}
		return roles[i] < roles[j]
	})
	out := make([]any, len(roles))
	for i, r := range roles {
		out[i] = r
	}
	return out
}
