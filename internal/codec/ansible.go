package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"smartos-inventory/internal/domain"

	"gopkg.in/yaml.v3"
)

// AnsibleYAMLCodec renders the inventory as a static Ansible YAML inventory,
// suitable for saving to a file and using without the dynamic script
type AnsibleYAMLCodec struct{}

// NewAnsibleYAMLCodec creates a new Ansible YAML codec
func NewAnsibleYAMLCodec() *AnsibleYAMLCodec {
	return &AnsibleYAMLCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleYAMLCodec) Format() string {
	return "ansible-yaml"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]map[string]any  `yaml:"hosts,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]*struct{} `yaml:"hosts"`
}

// builtinGroups are implicit in every Ansible inventory
var builtinGroups = map[string]bool{"all": true, "ungrouped": true}

// checkGroupNames rejects groups that would shadow a built-in group or a host
func checkGroupNames(doc *domain.InventoryDocument) error {
	for name := range doc.Groups {
		if builtinGroups[name] {
			return &domain.ConsistencyError{Reason: fmt.Sprintf("group name %q is reserved in YAML inventories", name)}
		}
		if _, ok := doc.HostVars[name]; ok {
			return &domain.ConsistencyError{Reason: fmt.Sprintf("group %q has the same name as a host", name)}
		}
	}
	return nil
}

// Export writes the document as YAML. Host variables live under all.hosts
// and every group becomes a child of all listing its members.
func (c *AnsibleYAMLCodec) Export(doc *domain.InventoryDocument, w io.Writer) error {
	if err := checkGroupNames(doc); err != nil {
		return err
	}

	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef, len(doc.Groups)),
			Hosts:    make(map[string]map[string]any, len(doc.HostVars)),
		},
	}

	for name, members := range doc.Groups {
		hosts := make(map[string]*struct{}, len(members))
		for _, member := range members {
			hosts[member] = nil
		}
		inv.All.Children[name] = ansibleGroupDef{Hosts: hosts}
	}

	for name, vars := range doc.HostVars {
		inv.All.Hosts[name] = normalizeNumbers(map[string]any(vars)).(map[string]any)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush Ansible inventory: %w", err)
	}

	return nil
}

// normalizeNumbers replaces json.Number with int64 or float64 so YAML emits
// numbers rather than quoted strings
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(string(t), 64); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeNumbers(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeNumbers(val)
		}
		return out
	default:
		return v
	}
}
