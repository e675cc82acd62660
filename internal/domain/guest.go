package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Payload field names used by vmadm
const (
	FieldHostname = "hostname"
	FieldAlias    = "alias"
	FieldBrand    = "brand"
	FieldNICs     = "nics"
)

// Segment is a VLAN identifier kept as its literal text.
// vmadm emits it as a number, hand-written payloads sometimes as a string.
type Segment string

// UnmarshalJSON accepts a JSON number or string
func (s *Segment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Segment(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("vlan_id must be a number or string, got %s", data)
	}
	*s = Segment(num.String())
	return nil
}

// NIC is a guest network interface
type NIC struct {
	IP   string  `json:"ip"`
	VLAN Segment `json:"vlan_id,omitempty"`
}

// HasVLAN reports whether the interface sits on a tagged segment
func (n NIC) HasVLAN() bool {
	return n.VLAN != ""
}

// GuestRecord is one guest from the vmadm payload
type GuestRecord struct {
	// Name is the resolved inventory name (hostname, else alias)
	Name     string
	Hostname string
	Alias    string
	// Brand is empty when the payload carries no brand
	Brand string
	NICs  []NIC
	// Raw is the original payload object
	Raw map[string]any
}

// PrimaryNIC returns the first interface, if any
func (g *GuestRecord) PrimaryNIC() (NIC, bool) {
	if len(g.NICs) == 0 {
		return NIC{}, false
	}
	return g.NICs[0], true
}

// ResolveName applies the identifier rule: hostname, and only when it is
// absent, alias. Exactly one is chosen.
func ResolveName(hostname, alias string) (string, bool) {
	if hostname != "" {
		return hostname, true
	}
	if alias != "" {
		return alias, true
	}
	return "", false
}
