package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartos-inventory/internal/domain"
)

func TestAssemble(t *testing.T) {
	records := parse(t, `[
  {"hostname": "a", "brand": "kvm", "nics": [{"ip": "1.2.3.4", "vlan_id": 7}]},
  {"alias": "b", "brand": "lx", "nics": [{"ip": "5.6.7.8"}]},
  {"hostname": "c", "brand": "kvm", "nics": [{"ip": "9.9.9.9", "vlan_id": 7}]}
]`)
	result, err := NewGrouper(nil).Group(records)
	require.NoError(t, err)

	doc, err := Assemble(result)
	require.NoError(t, err)

	assert.Equal(t, []string{"kvm", "lx", "smartos", "vlan_7"}, doc.GroupNames())

	// Every member has hostvars and every hostvars entry is a member
	members := make(map[string]bool)
	for _, names := range doc.Groups {
		for _, name := range names {
			members[name] = true
			assert.Contains(t, doc.HostVars, name)
		}
	}
	for name := range doc.HostVars {
		assert.True(t, members[name], "hostvars %s not in any group", name)
	}
}

func TestAssembleEmpty(t *testing.T) {
	doc, err := Assemble(NewGroupingResult())
	require.NoError(t, err)

	assert.Equal(t, []string{UniversalGroup}, doc.GroupNames())
	assert.Empty(t, doc.Groups[UniversalGroup])
	assert.NotNil(t, doc.Groups[UniversalGroup])
	assert.Empty(t, doc.HostVars)
}

func TestAssembleConsistency(t *testing.T) {
	tests := []struct {
		name   string
		result *GroupingResult
	}{
		{
			name: "member without hostvars",
			result: &GroupingResult{
				Groups:   map[string][]string{UniversalGroup: {"a", "ghost"}},
				HostVars: map[string]domain.HostVars{"a": {VarHost: "10.0.0.1"}},
			},
		},
		{
			name: "hostvars without group",
			result: &GroupingResult{
				Groups:   map[string][]string{UniversalGroup: {"a"}},
				HostVars: map[string]domain.HostVars{"a": {VarHost: "10.0.0.1"}, "orphan": {VarHost: "10.0.0.2"}},
			},
		},
		{
			name: "reserved group name",
			result: &GroupingResult{
				Groups:   map[string][]string{UniversalGroup: {"a"}, domain.MetaKey: {"a"}},
				HostVars: map[string]domain.HostVars{"a": {VarHost: "10.0.0.1"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Assemble(tt.result)
			assert.Nil(t, doc)
			var cerr *domain.ConsistencyError
			assert.True(t, errors.As(err, &cerr), "got %v", err)
		})
	}
}

func TestAssembleReservedBrand(t *testing.T) {
	records := parse(t, `[{"hostname": "a", "brand": "_meta", "nics": [{"ip": "10.0.0.1"}]}]`)
	result, err := NewGrouper(nil).Group(records)
	require.NoError(t, err)

	_, err = Assemble(result)
	var cerr *domain.ConsistencyError
	assert.True(t, errors.As(err, &cerr), "got %v", err)
}
