package scaffolding

import (
	"fmt"
	"strings"
)

// TemplateIssue is one problem found in a template set.
type TemplateIssue struct {
	Path    string   `json:"path" yaml:"path"`
	Tokens  []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Message string   `json:"message" yaml:"message"`
}

// TemplateReport is the outcome of ValidateTemplates.
type TemplateReport struct {
	Template string          `json:"template" yaml:"template"`
	Files    int             `json:"files" yaml:"files"`
	Issues   []TemplateIssue `json:"issues" yaml:"issues"`
}

// Valid reports whether no issues were found.
func (r *TemplateReport) Valid() bool {
	return len(r.Issues) == 0
}

func (r *TemplateReport) String() string {
	if r.Valid() {
		return fmt.Sprintf("template %s: %d files, ok", r.Template, r.Files)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "template %s: %d issues\n", r.Template, len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  - %s: %s\n", issue.Path, issue.Message)
	}
	return b.String()
}

// ValidateTemplates checks that every target source exists in the template
// set and that every file only uses placeholders from the Vocabulary.
func ValidateTemplates(src Source, name string) (*TemplateReport, error) {
	files, err := src.List(name)
	if err != nil {
		return nil, err
	}

	report := &TemplateReport{Template: name, Files: len(files), Issues: []TemplateIssue{}}

	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}
	for _, t := range Targets {
		if !present[t.Source] {
			report.Issues = append(report.Issues, TemplateIssue{
				Path:    t.Source,
				Message: "missing file for " + t.Destination,
			})
		}
	}

	for _, f := range files {
		if f == ManifestFile {
			continue
		}
		data, err := src.Read(name, f)
		if err != nil {
			return nil, err
		}

		var unknown []string
		for _, token := range FindTokens(string(data)) {
			if !InVocabulary(token) {
				unknown = append(unknown, token)
			}
		}
		if len(unknown) > 0 {
			report.Issues = append(report.Issues, TemplateIssue{
				Path:    f,
				Tokens:  unknown,
				Message: "placeholders outside the vocabulary: " + strings.Join(unknown, ", "),
			})
		}
	}

	return report, nil
}
