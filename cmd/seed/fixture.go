package main

import (
	"fmt"
	"os"
	"promptops-backend/internal/lifecycle"
	"promptops-backend/internal/models"
	"promptops-backend/internal/services"

	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Templates []TemplateFixture `yaml:"templates"`
}

type TemplateFixture struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	ProjectID   string           `yaml:"projectId"`
	Category    string           `yaml:"category"`
	Versions    []VersionFixture `yaml:"versions"`
}

// VersionFixture refers to its parent by version number within the same template.
type VersionFixture struct {
	VersionNumber string               `yaml:"versionNumber"`
	Parent        string               `yaml:"parent"`
	Content       string               `yaml:"content"`
	SystemPrompt  string               `yaml:"systemPrompt"`
	Status        models.VersionStatus `yaml:"status"`
	Parameters    []ParameterFixture   `yaml:"parameters"`
}

type ParameterFixture struct {
	Name              string               `yaml:"name"`
	Description       string               `yaml:"description"`
	Type              models.ParameterType `yaml:"type"`
	Default           *string              `yaml:"default"`
	Required          bool                 `yaml:"required"`
	ValidationPattern string               `yaml:"pattern"`
}

type Report struct {
	TemplatesCreated int
	TemplatesSkipped int
	VersionsCreated  int
}

// LoadFixture reads and checks a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

func ParseFixture(raw []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	for _, t := range fixture.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("fixture template without a name")
		}
		declared := make(map[string]bool, len(t.Versions))
		for _, v := range t.Versions {
			if v.Parent != "" && !declared[v.Parent] {
				return nil, fmt.Errorf("template %q: version %q names parent %q before it is declared", t.Name, v.VersionNumber, v.Parent)
			}
			if v.Status != "" && !v.Status.IsValid() {
				return nil, fmt.Errorf("template %q: version %q has unknown status %q", t.Name, v.VersionNumber, v.Status)
			}
			declared[v.VersionNumber] = true
		}
	}
	return &fixture, nil
}

// Apply creates the fixture's templates and versions. Existing templates
// are left untouched.
func Apply(fixture *Fixture, actor string) (Report, error) {
	var report Report

	for _, t := range fixture.Templates {
		exists, err := services.TemplateNameExists(t.Name)
		if err != nil {
			return report, err
		}
		if exists {
			report.TemplatesSkipped++
			continue
		}

		template, err := services.CreatePromptTemplate(actor, services.TemplateInput{
			Name:        t.Name,
			Description: t.Description,
			ProjectID:   t.ProjectID,
			Category:    t.Category,
		})
		if err != nil {
			return report, fmt.Errorf("template %q: %w", t.Name, err)
		}
		report.TemplatesCreated++

		ids := make(map[string]string, len(t.Versions))
		for _, v := range t.Versions {
			created, err := services.CreatePromptVersion(actor, services.VersionInput{
				TemplateID:      template.ID,
				VersionNumber:   v.VersionNumber,
				Content:         v.Content,
				SystemPrompt:    v.SystemPrompt,
				ParentVersionID: ids[v.Parent],
				Parameters:      v.parameters(),
			})
			if err != nil {
				return report, fmt.Errorf("template %q version %q: %w", t.Name, v.VersionNumber, err)
			}
			ids[v.VersionNumber] = created.ID
			report.VersionsCreated++

			for _, step := range statusPath(v.Status) {
				if _, err := services.UpdateVersionStatus(created.ID, step, "seeded", actor); err != nil {
					return report, fmt.Errorf("template %q version %q: %w", t.Name, v.VersionNumber, err)
				}
			}
		}
	}
	return report, nil
}

func (v VersionFixture) parameters() []models.PromptParameter {
	params := make([]models.PromptParameter, 0, len(v.Parameters))
	for _, p := range v.Parameters {
		params = append(params, models.PromptParameter{
			Name:              p.Name,
			Description:       p.Description,
			ParameterType:     p.Type,
			DefaultValue:      p.Default,
			Required:          p.Required,
			ValidationPattern: p.ValidationPattern,
		})
	}
	return params
}

// statusPath returns the shortest sequence of transitions from DRAFT to
// target, following the lifecycle table. It is empty for DRAFT.
func statusPath(target models.VersionStatus) []models.VersionStatus {
	prev := map[models.VersionStatus]models.VersionStatus{}
	seen := map[models.VersionStatus]bool{models.VersionStatusDraft: true}
	queue := []models.VersionStatus{models.VersionStatusDraft}

	for len(queue) > 0 && !seen[target] {
		current := queue[0]
		queue = queue[1:]
		for _, next := range lifecycle.AllowedTransitions(current) {
			if !seen[next] {
				seen[next] = true
				prev[next] = current
				queue = append(queue, next)
			}
		}
	}
	if !seen[target] {
		return nil
	}

	var path []models.VersionStatus
	for s := target; s != models.VersionStatusDraft; s = prev[s] {
		path = append([]models.VersionStatus{s}, path...)
	}
	return path
}
