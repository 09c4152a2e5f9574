package lifecycle

import (
	"fmt"
	"strings"

	"promptops-backend/internal/models"
)

// VersionRef identifies one side of a comparison.
type VersionRef struct {
	ID            string               `json:"id"`
	VersionNumber string               `json:"versionNumber"`
	Status        models.VersionStatus `json:"status"`
}

// ParameterChange pairs the source and target definitions of a parameter
// whose name exists on both sides but whose definition differs.
type ParameterChange struct {
	Name          string                 `json:"name"`
	Source        models.PromptParameter `json:"source"`
	Target        models.PromptParameter `json:"target"`
	ChangedFields []string               `json:"changedFields"`
}

type ParameterChanges struct {
	Added   []models.PromptParameter `json:"added"`
	Removed []models.PromptParameter `json:"removed"`
	Changed []ParameterChange        `json:"changed"`
}

type ComparisonResult struct {
	Source           VersionRef       `json:"source"`
	Target           VersionRef       `json:"target"`
	ContentDiff      []VersionDiff    `json:"contentDiff"`
	SystemPromptDiff []VersionDiff    `json:"systemPromptDiff"`
	ParameterDiff    []VersionDiff    `json:"parameterDiff"`
	ParameterChanges ParameterChanges `json:"parameterChanges"`
	Stats            DiffStats        `json:"stats"`
}

// CompareVersions diffs content, system prompt and parameters of two versions.
// Parameters are joined by name, so a renamed parameter shows up as one
// removal and one addition.
func CompareVersions(source, target *models.PromptVersion) ComparisonResult {
	result := ComparisonResult{
		Source:           refOf(source),
		Target:           refOf(target),
		ContentDiff:      DiffLines(source.Content, target.Content),
		SystemPromptDiff: DiffLines(source.SystemPrompt, target.SystemPrompt),
		ParameterDiff:    DiffLines(parameterLines(source.Parameters), parameterLines(target.Parameters)),
		ParameterChanges: diffParameters(source.Parameters, target.Parameters),
	}

	content := SummarizeDiff(result.ContentDiff)
	system := SummarizeDiff(result.SystemPromptDiff)
	params := SummarizeDiff(result.ParameterDiff)
	result.Stats = DiffStats{
		Added:     content.Added + system.Added + params.Added,
		Removed:   content.Removed + system.Removed + params.Removed,
		Unchanged: content.Unchanged + system.Unchanged + params.Unchanged,
	}
	return result
}

func refOf(v *models.PromptVersion) VersionRef {
	return VersionRef{ID: v.ID, VersionNumber: v.VersionNumber, Status: v.Status}
}

// parameterLines renders one line per parameter so that added, removed and
// modified parameters show up in a line diff.
func parameterLines(params []models.PromptParameter) string {
	lines := make([]string, 0, len(params))
	for _, p := range params {
		lines = append(lines, fmt.Sprintf("%s: type=%s required=%t default=%q",
			p.Name, p.ParameterType, p.Required, p.Default()))
	}
	return strings.Join(lines, "\n")
}

func diffParameters(source, target []models.PromptParameter) ParameterChanges {
	sourceByName := make(map[string]models.PromptParameter, len(source))
	for _, p := range source {
		sourceByName[p.Name] = p
	}
	targetNames := make(map[string]struct{}, len(target))
	for _, p := range target {
		targetNames[p.Name] = struct{}{}
	}

	changes := ParameterChanges{
		Added:   []models.PromptParameter{},
		Removed: []models.PromptParameter{},
		Changed: []ParameterChange{},
	}
	for _, t := range target {
		s, ok := sourceByName[t.Name]
		if !ok {
			changes.Added = append(changes.Added, t)
			continue
		}
		if fields := changedFields(s, t); len(fields) > 0 {
			changes.Changed = append(changes.Changed, ParameterChange{Name: t.Name, Source: s, Target: t, ChangedFields: fields})
		}
	}
	for _, s := range source {
		if _, ok := targetNames[s.Name]; !ok {
			changes.Removed = append(changes.Removed, s)
		}
	}
	return changes
}

func changedFields(s, t models.PromptParameter) []string {
	var fields []string
	if s.ParameterType != t.ParameterType {
		fields = append(fields, "parameterType")
	}
	if s.Required != t.Required {
		fields = append(fields, "required")
	}
	if (s.DefaultValue == nil) != (t.DefaultValue == nil) || s.Default() != t.Default() {
		fields = append(fields, "defaultValue")
	}
	if s.Description != t.Description {
		fields = append(fields, "description")
	}
	if s.ValidationPattern != t.ValidationPattern {
		fields = append(fields, "validationPattern")
	}
	return fields
}
