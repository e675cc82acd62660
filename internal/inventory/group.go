// Package inventory turns parsed guest records into an Ansible dynamic
// inventory: grouping first, then assembly into the final document.
package inventory

import (
	"log/slog"

	"smartos-inventory/internal/domain"
)

const (
	// UniversalGroup holds every guest and is always present
	UniversalGroup = "smartos"
	// VLANGroupPrefix is prepended to the VLAN id of the primary NIC
	VLANGroupPrefix = "vlan_"

	// VarHost is the plain connection address variable
	VarHost = "ansible_host"
	// VarSSHHost is the protocol-qualified connection address variable
	VarSSHHost = "ansible_ssh_host"
	// VarVendor holds the raw vmadm record
	VarVendor = "smartos"
)

// GroupingResult accumulates group membership and host variables.
// Members keep payload order; the serializer sorts them.
type GroupingResult struct {
	Groups   map[string][]string
	HostVars map[string]domain.HostVars
}

// NewGroupingResult creates an empty result with the universal group in place
func NewGroupingResult() *GroupingResult {
	return &GroupingResult{
		Groups:   map[string][]string{UniversalGroup: {}},
		HostVars: make(map[string]domain.HostVars),
	}
}

// Has reports whether a host has already been recorded
func (r *GroupingResult) Has(name string) bool {
	_, ok := r.HostVars[name]
	return ok
}

// AddMember appends name to group, creating the group on first use.
// Adding the host that was just added is a no-op, so a brand that happens to
// equal another derived group name does not list the host twice.
func (r *GroupingResult) AddMember(group, name string) {
	members := r.Groups[group]
	if n := len(members); n > 0 && members[n-1] == name {
		return
	}
	r.Groups[group] = append(members, name)
}

// Grouper classifies guest records into inventory groups
type Grouper struct {
	logger *slog.Logger
}

// NewGrouper creates a grouper; a nil logger discards output
func NewGrouper(logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Grouper{logger: logger}
}

// Group processes records in payload order. The first record seen for a name
// is authoritative and later ones are ignored. A guest without a usable
// primary address fails the whole run.
func (g *Grouper) Group(records []domain.GuestRecord) (*GroupingResult, error) {
	result := NewGroupingResult()

	for i := range records {
		rec := &records[i]

		if result.Has(rec.Name) {
			g.logger.Debug("ignoring duplicate guest", "name", rec.Name, "index", i)
			continue
		}

		nic, ok := rec.PrimaryNIC()
		if !ok {
			return nil, &domain.IncompleteRecordError{Index: i, Name: rec.Name, Reason: "no network interfaces"}
		}
		if nic.IP == "" {
			return nil, &domain.IncompleteRecordError{Index: i, Name: rec.Name, Reason: "first network interface has no ip"}
		}

		result.AddMember(UniversalGroup, rec.Name)
		if rec.Brand != "" {
			result.AddMember(rec.Brand, rec.Name)
		}
		if nic.HasVLAN() {
			result.AddMember(VLANGroupPrefix+string(nic.VLAN), rec.Name)
		}

		result.HostVars[rec.Name] = domain.HostVars{
			VarHost:    nic.IP,
			VarSSHHost: nic.IP,
			VarVendor:  rec.Raw,
		}

		g.logger.Debug("grouped guest", "name", rec.Name, "ip", nic.IP, "brand", rec.Brand, "vlan", string(nic.VLAN))
	}

	return result, nil
}
