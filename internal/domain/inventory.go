package domain

import "sort"

// Inventory document keys
const (
	MetaKey     = "_meta"
	HostVarsKey = "hostvars"
)

// HostVars is the variable bag published for one inventory host
type HostVars map[string]any

// InventoryDocument is the assembled Ansible dynamic inventory.
// It is built once and not modified afterwards.
type InventoryDocument struct {
	Groups   map[string][]string
	HostVars map[string]HostVars
}

// GroupNames returns the group names in lexical order
func (d *InventoryDocument) GroupNames() []string {
	names := make([]string, 0, len(d.Groups))
	for name := range d.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tree returns the document in the shape Ansible expects: one key per group
// plus _meta.hostvars. Member lists are sorted copies.
func (d *InventoryDocument) Tree() map[string]any {
	tree := make(map[string]any, len(d.Groups)+1)
	for name, members := range d.Groups {
		sorted := make([]string, len(members))
		copy(sorted, members)
		sort.Strings(sorted)
		tree[name] = sorted
	}

	hostvars := make(map[string]any, len(d.HostVars))
	for name, vars := range d.HostVars {
		hostvars[name] = map[string]any(vars)
	}
	tree[MetaKey] = map[string]any{HostVarsKey: hostvars}

	return tree
}
