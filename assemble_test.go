package sysreptor

import (
	"reflect"
	"testing"
	"time"
)

func testProjectType() *ProjectType {
	return &ProjectType{
		ID:   "pt1",
		Name: "Web Pentest",
		ReportFields: []*FieldDefinition{
			{ID: "title", Type: FieldTypeString, Default: "Report"},
		},
		FindingFields: []*FieldDefinition{
			{ID: "title", Type: FieldTypeString},
			{ID: "cvss", Type: FieldTypeCvss},
			{ID: "status", Type: FieldTypeEnum, Choices: []EnumChoice{
				{Value: "open", Label: "Open"},
				{Value: "closed", Label: "Closed"},
			}},
		},
	}
}

func findingIDs(t *testing.T, data map[string]any) []string {
	t.Helper()
	findings, ok := data["findings"].([]any)
	if !ok {
		t.Fatalf("findings = %T, want []any", data["findings"])
	}
	ids := make([]string, len(findings))
	for i, f := range findings {
		record, ok := f.(map[string]any)
		if !ok {
			t.Fatalf("finding %d = %T, want map", i, f)
		}
		ids[i], _ = record["id"].(string)
	}
	return ids
}

func TestAssembleTemplateDataShape(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{"id": "p1", "title": "Audit"},
		Findings: []Finding{
			{ID: "f1", Created: created, Order: 3, Data: map[string]any{"title": "XSS"}},
		},
		ProjectType: testProjectType(),
	})

	report, ok := data["report"].(map[string]any)
	if !ok {
		t.Fatal("report missing")
	}
	if report["title"] != "Audit" || report["id"] != "p1" {
		t.Errorf("report = %#v", report)
	}

	findings := data["findings"].([]any)
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d", len(findings))
	}
	finding := findings[0].(map[string]any)
	if finding["id"] != "f1" {
		t.Errorf("id = %v", finding["id"])
	}
	if finding["created"] != created.Format(time.RFC3339) {
		t.Errorf("created = %v", finding["created"])
	}
	if finding["order"] != 3 {
		t.Errorf("order = %v", finding["order"])
	}
	if finding["title"] != "XSS" {
		t.Errorf("title = %v", finding["title"])
	}

	if _, ok := data["pentesters"]; !ok {
		t.Error("pentesters key missing")
	}
}

func TestAssembleFindingDataOverridesRecordKeys(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Findings: []Finding{
			{ID: "f1", Created: created, Order: 3, Data: map[string]any{
				"id":      "custom-id",
				"created": "2020-01-01T00:00:00Z",
				"order":   99,
			}},
		},
		ProjectType: testProjectType(),
	})

	finding := data["findings"].([]any)[0].(map[string]any)
	if finding["id"] != "custom-id" {
		t.Errorf("id = %v, stored data must win over the injected key", finding["id"])
	}
	if finding["created"] != "2020-01-01T00:00:00Z" {
		t.Errorf("created = %v, stored data must win over the injected key", finding["created"])
	}
	if finding["order"] != 99 {
		t.Errorf("order = %v, stored data must win over the injected key", finding["order"])
	}
}

func TestAssembleMemberRecords(t *testing.T) {
	t.Parallel()

	pt := testProjectType()
	pt.ReportFields = append(pt.ReportFields, &FieldDefinition{ID: "author", Type: FieldTypeUser})
	f := NewFormatter(nil)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{"author": "u1"},
		MemberRecords: []any{
			map[string]any{"id": "u1", "name": "Alex", "roles": []any{"lead"}},
		},
		ProjectType: pt,
	})

	members := data["pentesters"].([]any)
	if len(members) != 1 {
		t.Fatalf("pentesters = %v, raw member records must join the pool", members)
	}
	record := members[0].(map[string]any)
	if record["name"] != "Alex" {
		t.Errorf("member = %#v", record)
	}

	report := data["report"].(map[string]any)
	author, ok := report["author"].(map[string]any)
	if !ok {
		t.Fatalf("author = %v, user reference must resolve against member records", report["author"])
	}
	if author["id"] != "u1" {
		t.Errorf("author = %#v", author)
	}
}

func TestAssembleFindingOrderDefault(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Findings: []Finding{
			{ID: "b", Created: base.Add(2 * time.Hour)},
			{ID: "c", Created: base},
			{ID: "a", Created: base},
		},
		ProjectType: testProjectType(),
	})

	// Default ordering is created time, ties broken by id.
	want := []string{"a", "c", "b"}
	if got := findingIDs(t, data); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleFindingOrderByRules(t *testing.T) {
	t.Parallel()

	pt := testProjectType()
	pt.FindingOrdering = []string{"-cvss"}
	f := NewFormatter(nil)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Findings: []Finding{
			{ID: "low", Data: map[string]any{"cvss": "CVSS:3.1/AV:N/AC:L/PR:N/UI:R/S:U/C:L/I:L/A:N"}},
			{ID: "crit", Data: map[string]any{"cvss": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"}},
			{ID: "none", Data: map[string]any{"cvss": ""}},
		},
		ProjectType: pt,
	})

	want := []string{"crit", "low", "none"}
	if got := findingIDs(t, data); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleFindingOrderByEnum(t *testing.T) {
	t.Parallel()

	pt := testProjectType()
	pt.FindingOrdering = []string{"status"}
	f := NewFormatter(nil)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Findings: []Finding{
			{ID: "f1", Data: map[string]any{"status": "open"}},
			{ID: "f2", Data: map[string]any{"status": "closed"}},
		},
		ProjectType: pt,
	})

	// Enum fields compare by their value.
	want := []string{"f2", "f1"}
	if got := findingIDs(t, data); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleFindingOrderOverride(t *testing.T) {
	t.Parallel()

	pt := testProjectType()
	pt.FindingOrdering = []string{"-cvss"}
	f := NewFormatter(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Findings: []Finding{
			{ID: "z", Created: base.Add(time.Hour), Order: 1},
			{ID: "a", Created: base, Order: 2},
		},
		ProjectType:          pt,
		OverrideFindingOrder: true,
	})

	// With manual ordering the input order is authoritative.
	want := []string{"z", "a"}
	if got := findingIDs(t, data); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestAssembleMemberPool(t *testing.T) {
	t.Parallel()

	f := NewFormatter(nil)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{},
		Pentesters: []ProjectMember{
			{ID: "u2", Name: "Zoe", Roles: []string{"pentester"}},
			{ID: "u1", Name: "Ada", Roles: []string{"reviewer"}},
			{ID: "u3", Name: "Max", Roles: []string{"lead"}},
		},
		ImportedMembers: []map[string]any{
			{"id": "ext1", "name": "Eve", "roles": []any{"pentester"}},
		},
		ProjectType: testProjectType(),
	})

	members, ok := data["pentesters"].([]any)
	if !ok {
		t.Fatal("pentesters missing")
	}
	var names []string
	for _, m := range members {
		record := m.(map[string]any)
		name, _ := record["name"].(string)
		names = append(names, name)
	}
	// Lead first, then pentesters by name, then reviewer.
	want := []string{"Max", "Eve", "Zoe", "Ada"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("member order = %v, want %v", names, want)
	}
}

func TestAssembleUserFieldResolvesImportedMember(t *testing.T) {
	t.Parallel()

	pt := testProjectType()
	pt.ReportFields = append(pt.ReportFields, &FieldDefinition{ID: "contact", Type: FieldTypeUser})
	f := NewFormatter(nil)
	data := f.AssembleTemplateData(AssembleInput{
		Report: map[string]any{"contact": "ext1"},
		ImportedMembers: []map[string]any{
			{"id": "ext1", "name": "Eve", "email": "eve@example.com"},
		},
		ProjectType: pt,
	})

	report := data["report"].(map[string]any)
	contact, ok := report["contact"].(map[string]any)
	if !ok {
		t.Fatalf("contact = %v, want resolved record", report["contact"])
	}
	if contact["email"] != "eve@example.com" {
		t.Errorf("contact email = %v", contact["email"])
	}
}

func TestCompareFieldValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"numbers", 1, 2, -1},
		{"numeric strings", "9.8", "10.0", -1},
		{"strings", "b", "a", 1},
		{"nil sorts first", nil, "a", -1},
		{"both nil", nil, nil, 0},
		{"score maps", map[string]any{"score": "5.0"}, map[string]any{"score": "9.8"}, -1},
		{"value maps", map[string]any{"value": "b"}, map[string]any{"value": "a"}, 1},
		{"equal", "x", "x", 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := compareFieldValues(tt.a, tt.b); got != tt.want {
				t.Errorf("compareFieldValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
