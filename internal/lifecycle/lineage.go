package lifecycle

import "promptops-backend/internal/models"

// FetchFunc loads a single version by id.
type FetchFunc func(id string) (*models.PromptVersion, error)

// LineageChain follows parent links from versionID up to its root and returns
// the chain ordered root first, ending with the requested version.
func LineageChain(versionID string, fetch FetchFunc) ([]models.PromptVersion, error) {
	visited := make(map[string]struct{})
	var chain []models.PromptVersion

	for id := versionID; id != ""; {
		if _, seen := visited[id]; seen {
			return nil, &CycleError{VersionID: id}
		}
		visited[id] = struct{}{}

		version, err := fetch(id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *version)
		id = version.ParentID()
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Children returns the versions in all whose parent is versionID, in input order.
func Children(versionID string, all []models.PromptVersion) []models.PromptVersion {
	var children []models.PromptVersion
	for _, v := range all {
		if v.ParentID() == versionID && versionID != "" {
			children = append(children, v)
		}
	}
	return children
}
