package inventory

import (
	"fmt"

	"smartos-inventory/internal/domain"
)

// Assemble builds the inventory document from a grouping result.
// Every group member must have host variables and every host with variables
// must belong to a group; anything else is a ConsistencyError.
func Assemble(result *GroupingResult) (*domain.InventoryDocument, error) {
	if _, ok := result.Groups[domain.MetaKey]; ok {
		return nil, &domain.ConsistencyError{Reason: fmt.Sprintf("group name %q is reserved", domain.MetaKey)}
	}

	grouped := make(map[string]bool, len(result.HostVars))
	doc := &domain.InventoryDocument{
		Groups:   make(map[string][]string, len(result.Groups)),
		HostVars: make(map[string]domain.HostVars, len(result.HostVars)),
	}

	for group, members := range result.Groups {
		for _, name := range members {
			if _, ok := result.HostVars[name]; !ok {
				return nil, &domain.ConsistencyError{Reason: fmt.Sprintf("group %q references %q which has no hostvars", group, name)}
			}
			grouped[name] = true
		}
		copied := make([]string, len(members))
		copy(copied, members)
		doc.Groups[group] = copied
	}

	for name, vars := range result.HostVars {
		if !grouped[name] {
			return nil, &domain.ConsistencyError{Reason: fmt.Sprintf("hostvars for %q but it is in no group", name)}
		}
		doc.HostVars[name] = vars
	}

	return doc, nil
}
