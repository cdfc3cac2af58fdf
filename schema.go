package sysreptor

import "strings"

// Field type constants. The set is closed: adding a kind means extending
// this list and the switch in FormatValue.
const (
	FieldTypeString   = "string"
	FieldTypeMarkdown = "markdown"
	FieldTypeCvss     = "cvss"
	FieldTypeCwe      = "cwe"
	FieldTypeDate     = "date"
	FieldTypeNumber   = "number"
	FieldTypeBoolean  = "boolean"
	FieldTypeEnum     = "enum"
	FieldTypeCombobox = "combobox"
	FieldTypeUser     = "user"
	FieldTypeObject   = "object"
	FieldTypeList     = "list"
	FieldTypeJSON     = "json"
)

// EnumChoice is one selectable value of an enum field.
type EnumChoice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDefinition describes one schema-declared field. It is a tagged
// variant over Type: enum fields carry Choices, list fields carry Items,
// object fields carry Fields. The ID is the stable key of the field's value
// in the data tree.
type FieldDefinition struct {
	ID      string             `yaml:"id"`
	Type    string             `yaml:"type"`
	Label   string             `yaml:"label"`
	Default any                `yaml:"default"`
	Choices []EnumChoice       `yaml:"choices"`
	Items   *FieldDefinition   `yaml:"items"`
	Fields  []*FieldDefinition `yaml:"fields"`
}

// DefaultValue returns the schema default for the field. Object fields
// default to a map holding every child's default, list fields to an empty
// list, scalars to the declared Default (nil when absent).
func (f *FieldDefinition) DefaultValue() any {
	switch f.Type {
	case FieldTypeObject:
		out := make(map[string]any, len(f.Fields))
		for _, child := range f.Fields {
			out[child.ID] = child.DefaultValue()
		}
		return out
	case FieldTypeList:
		if f.Default != nil {
			return f.Default
		}
		return []any{}
	default:
		return f.Default
	}
}

// FieldByID returns the direct child field with the given id, or nil.
func (f *FieldDefinition) FieldByID(id string) *FieldDefinition {
	for _, child := range f.Fields {
		if child.ID == id {
			return child
		}
	}
	return nil
}

// FindingOrderRule is one sort key of a project type's finding ordering.
// Field names the finding data key to compare; prefix the field with "-" in
// serialized form for descending order.
type FindingOrderRule struct {
	Field      string
	Descending bool
}

// ParseFindingOrderRule parses a serialized ordering rule ("-cvss", "title").
func ParseFindingOrderRule(s string) FindingOrderRule {
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return FindingOrderRule{Field: rest, Descending: true}
	}
	return FindingOrderRule{Field: s}
}

// ProjectType is the schema definition governing a project's report and
// finding structure, plus the report template and stylesheet used for
// rendering.
type ProjectType struct {
	ID              string             `yaml:"id"`
	Name            string             `yaml:"name"`
	Language        string             `yaml:"language"`
	ReportTemplate  string             `yaml:"report_template"`
	ReportStyles    string             `yaml:"report_styles"`
	ReportFields    []*FieldDefinition `yaml:"report_fields"`
	FindingFields   []*FieldDefinition `yaml:"finding_fields"`
	FindingOrdering []string           `yaml:"finding_ordering"`

	// Assets are design-owned binary resources shipped to the worker under
	// /assets/name/<name>.
	Assets []Resource `yaml:"assets"`
}

// ReportFieldsObject wraps the report field list as a single object
// definition so the report can be formatted like any other object value.
func (pt *ProjectType) ReportFieldsObject() *FieldDefinition {
	return &FieldDefinition{Type: FieldTypeObject, Fields: pt.ReportFields}
}

// FindingFieldsObject wraps the finding field list as an object definition.
func (pt *ProjectType) FindingFieldsObject() *FieldDefinition {
	return &FieldDefinition{Type: FieldTypeObject, Fields: pt.FindingFields}
}

// findingOrderRules returns the parsed ordering rules.
func (pt *ProjectType) findingOrderRules() []FindingOrderRule {
	rules := make([]FindingOrderRule, 0, len(pt.FindingOrdering))
	for _, s := range pt.FindingOrdering {
		rules = append(rules, ParseFindingOrderRule(s))
	}
	return rules
}
