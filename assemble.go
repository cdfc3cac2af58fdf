package sysreptor

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// AssembleInput carries everything the Template Data Assembler needs.
type AssembleInput struct {
	Report     map[string]any
	Findings   []Finding
	Pentesters []ProjectMember

	// MemberRecords are already-materialized member values (raw maps or ids),
	// as supplied by preview payloads. They join the member pool alongside
	// Pentesters.
	MemberRecords []any

	ImportedMembers      []map[string]any
	ProjectType          *ProjectType
	OverrideFindingOrder bool
}

// AssembleTemplateData builds the full render-ready data tree for a project:
// formatted report, ordered formatted findings, and the role-sorted member
// pool. The result is self-contained: every schema-declared key is present
// in its subtree.
func (f *Formatter) AssembleTemplateData(in AssembleInput) map[string]any {
	// Member pool: live pentesters plus imported collaborator records.
	candidates := make([]any, 0, len(in.ImportedMembers))
	for _, m := range in.ImportedMembers {
		candidates = append(candidates, m)
	}
	var members []any
	for _, p := range in.Pentesters {
		if formatted := f.formatUser(p.asMap(), candidates); formatted != nil {
			members = append(members, formatted)
		}
	}
	for _, m := range in.MemberRecords {
		if formatted := f.formatUser(m, candidates); formatted != nil {
			members = append(members, formatted)
		}
	}
	for _, m := range in.ImportedMembers {
		if formatted := f.formatUser(m, candidates); formatted != nil {
			members = append(members, formatted)
		}
	}

	report := f.FormatObject(in.Report, in.ProjectType.ReportFieldsObject(), members, true)

	findingDef := in.ProjectType.FindingFieldsObject()
	findings := make([]map[string]any, 0, len(in.Findings))
	for _, finding := range in.Findings {
		raw := map[string]any{
			"id":      finding.ID,
			"created": finding.Created.Format(time.RFC3339),
			"order":   finding.Order,
		}
		// Stored data wins over the injected record keys.
		for k, v := range finding.Data {
			raw[k] = v
		}
		findings = append(findings, f.FormatObject(raw, findingDef, members, true))
	}
	findings = sortFindings(findings, in.ProjectType, in.OverrideFindingOrder)

	sortMembers(members)

	findingList := make([]any, len(findings))
	for i, finding := range findings {
		findingList[i] = finding
	}
	return map[string]any{
		"report":     report,
		"findings":   findingList,
		"pentesters": members,
	}
}

// sortFindings orders formatted findings by the project type's ordering
// rules, with created time and id as tie-breakers. With override set the
// custom ordering is bypassed and input order is kept.
func sortFindings(findings []map[string]any, projectType *ProjectType, override bool) []map[string]any {
	if override {
		return findings
	}
	rules := projectType.findingOrderRules()
	if len(rules) == 0 {
		rules = []FindingOrderRule{{Field: "created"}}
	}
	rules = append(rules, FindingOrderRule{Field: "id"})

	sort.SliceStable(findings, func(i, j int) bool {
		for _, rule := range rules {
			cmp := compareFieldValues(findings[i][rule.Field], findings[j][rule.Field])
			if cmp == 0 {
				continue
			}
			if rule.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return findings
}

// sortMembers orders the member pool by role priority, ties broken by
// display name.
func sortMembers(members []any) {
	priority := func(member any) (int, string) {
		record, _ := member.(map[string]any)
		best := 10
		if roles, ok := record["roles"].([]any); ok {
			for _, role := range roles {
				if r, ok := role.(string); ok {
					if p := rolePriority(r); p < best {
						best = p
					}
				}
			}
		}
		name, _ := record["name"].(string)
		return best, name
	}
	sort.SliceStable(members, func(i, j int) bool {
		pi, ni := priority(members[i])
		pj, nj := priority(members[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
}

// compareFieldValues compares two formatted field values for ordering.
// Resolved structures compare by their natural sort key: CVSS by numeric
// score, enums by value. Nil sorts first.
func compareFieldValues(a, b any) int {
	av, aOK := sortKey(a)
	bv, bOK := sortKey(b)
	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	}

	an, aNum := toFloat(av)
	bn, bNum := toFloat(bv)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}

	as, bs := fmt.Sprint(av), fmt.Sprint(bv)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

// sortKey extracts the comparable key of a formatted value.
func sortKey(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case map[string]any:
		if score, ok := v["score"]; ok {
			return score, true
		}
		if val, ok := v["value"]; ok {
			return val, true
		}
		return nil, false
	default:
		return v, true
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
