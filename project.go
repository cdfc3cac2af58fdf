package sysreptor

import (
	"strings"
	"time"
)

// ProjectMember is a user participating in a project, with the roles they
// hold on it.
type ProjectMember struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	TitleBefore string   `yaml:"title_before"`
	FirstName   string   `yaml:"first_name"`
	MiddleName  string   `yaml:"middle_name"`
	LastName    string   `yaml:"last_name"`
	TitleAfter  string   `yaml:"title_after"`
	Email       string   `yaml:"email"`
	Phone       string   `yaml:"phone"`
	Mobile      string   `yaml:"mobile"`
	Roles       []string `yaml:"roles"`
}

// asMap returns the member as a raw data-tree value.
func (m *ProjectMember) asMap() map[string]any {
	roles := make([]any, len(m.Roles))
	for i, r := range m.Roles {
		roles[i] = r
	}
	return map[string]any{
		"id":           m.ID,
		"name":         m.Name,
		"title_before": m.TitleBefore,
		"first_name":   m.FirstName,
		"middle_name":  m.MiddleName,
		"last_name":    m.LastName,
		"title_after":  m.TitleAfter,
		"email":        m.Email,
		"phone":        m.Phone,
		"mobile":       m.Mobile,
		"roles":        roles,
	}
}

// UserStore resolves users by id. It is the live fallback for user field
// references that do not match any supplied member candidate. Lookups for
// unknown or malformed ids return ErrUserNotFound, never panic.
type UserStore interface {
	MemberByID(id string) (*ProjectMember, error)
}

// Section is one report section: a subset of report fields with its stored
// data.
type Section struct {
	ID     string         `yaml:"id"`
	Fields []string       `yaml:"fields"`
	Data   map[string]any `yaml:"data"`
}

// Finding is one finding record.
type Finding struct {
	ID      string         `yaml:"id"`
	Created time.Time      `yaml:"created"`
	Order   int            `yaml:"order"`
	Data    map[string]any `yaml:"data"`
}

// Resource is a named binary asset (image, font, attached file).
type Resource struct {
	Name string `yaml:"name"`
	Data []byte `yaml:"data"`
}

// Note is a notebook page.
type Note struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// IsFileReferenced reports whether the note text references the resource by
// its logical image or file path.
func (n *Note) IsFileReferenced(r Resource) bool {
	return strings.Contains(n.Text, "/images/name/"+r.Name) ||
		strings.Contains(n.Text, "/files/name/"+r.Name)
}

// Project is a pentest project with its report data, findings, and members.
type Project struct {
	ID                   string          `yaml:"id"`
	Name                 string          `yaml:"name"`
	Language             string          `yaml:"language"`
	ProjectType          *ProjectType    `yaml:"project_type"`
	OverrideFindingOrder bool            `yaml:"override_finding_order"`
	Sections             []Section       `yaml:"sections"`
	Findings             []Finding       `yaml:"findings"`
	Members              []ProjectMember `yaml:"members"`

	// ImportedMembers are contact records of external collaborators that are
	// not present in the live member list but still displayed in reports.
	ImportedMembers []map[string]any `yaml:"imported_members"`

	Images []Resource `yaml:"images"`
	Files  []Resource `yaml:"files"`
}

// ReportData merges all section data into the flat report value.
func (p *Project) ReportData() map[string]any {
	data := map[string]any{}
	for _, s := range p.Sections {
		for k, v := range s.Data {
			data[k] = v
		}
	}
	return data
}

// IsFileReferenced reports whether any markdown field of the project's
// sections or findings references the resource by its logical path.
// Unreferenced resources are not shipped to the rendering worker.
func (p *Project) IsFileReferenced(r Resource) bool {
	image := "/images/name/" + r.Name
	file := "/files/name/" + r.Name
	for _, text := range p.markdownTexts() {
		if strings.Contains(text, image) || strings.Contains(text, file) {
			return true
		}
	}
	return false
}

// markdownTexts collects the raw text of every markdown field in the
// project's sections and findings.
func (p *Project) markdownTexts() []string {
	if p.ProjectType == nil {
		return nil
	}
	var texts []string
	collect := func(value any, def *FieldDefinition) {
		for _, visit := range IterateFields(value, def, nil) {
			if visit.Definition.Type != FieldTypeMarkdown {
				continue
			}
			if text, ok := visit.Value.(string); ok {
				texts = append(texts, text)
			}
		}
	}
	reportDef := p.ProjectType.ReportFieldsObject()
	for _, s := range p.Sections {
		collect(s.Data, reportDef)
	}
	findingDef := p.ProjectType.FindingFieldsObject()
	for _, f := range p.Findings {
		collect(f.Data, findingDef)
	}
	return texts
}

// DetailSerializer turns a project into its full nested transport
// representation. The representation must key sections and findings by id
// the same way the markdown field path scheme does, so rendered fragments
// can be spliced back in.
type DetailSerializer interface {
	SerializeProject(project *Project) (map[string]any, error)
}

// StandardDetailSerializer is the built-in detail serialization: sections
// and findings as lists of {id, data} objects plus project metadata.
type StandardDetailSerializer struct{}

// SerializeProject implements DetailSerializer.
func (StandardDetailSerializer) SerializeProject(project *Project) (map[string]any, error) {
	sections := make([]any, len(project.Sections))
	for i, s := range project.Sections {
		sections[i] = map[string]any{
			"id":   s.ID,
			"data": deepCopyValue(s.Data),
		}
	}
	findings := make([]any, len(project.Findings))
	for i, f := range project.Findings {
		findings[i] = map[string]any{
			"id":      f.ID,
			"created": f.Created.Format(time.RFC3339),
			"order":   f.Order,
			"data":    deepCopyValue(f.Data),
		}
	}
	return map[string]any{
		"id":       project.ID,
		"name":     project.Name,
		"language": project.Language,
		"sections": sections,
		"findings": findings,
	}, nil
}

// deepCopyValue copies a nested map/slice/scalar tree so serialized output
// can be mutated without touching stored project data.
func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = deepCopyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = deepCopyValue(child)
		}
		return out
	default:
		return v
	}
}
