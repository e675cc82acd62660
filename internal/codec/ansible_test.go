package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"smartos-inventory/internal/domain"
)

func TestAnsibleYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	var exporter Exporter = NewAnsibleYAMLCodec()
	require.NoError(t, exporter.Export(sampleDocument(), &buf))

	var inv struct {
		All struct {
			Children map[string]struct {
				Hosts map[string]any `yaml:"hosts"`
			} `yaml:"children"`
			Hosts map[string]map[string]any `yaml:"hosts"`
		} `yaml:"all"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &inv))

	assert.Len(t, inv.All.Children, 2)
	assert.Contains(t, inv.All.Children["smartos"].Hosts, "db")
	assert.Contains(t, inv.All.Children["smartos"].Hosts, "web")
	assert.Contains(t, inv.All.Children["lx"].Hosts, "web")

	web := inv.All.Hosts["web"]
	assert.Equal(t, "10.0.0.2", web["ansible_host"])
	vendor := web["smartos"].(map[string]any)
	assert.Equal(t, 512, vendor["max_physical_memory"], "numbers stay numbers")
}

func TestAnsibleYAMLExportDeterministic(t *testing.T) {
	c := NewAnsibleYAMLCodec()

	var first bytes.Buffer
	require.NoError(t, c.Export(sampleDocument(), &first))
	for i := 0; i < 10; i++ {
		var again bytes.Buffer
		require.NoError(t, c.Export(sampleDocument(), &again))
		assert.Equal(t, first.String(), again.String())
	}
}

func TestAnsibleYAMLExportRejectsClashingGroups(t *testing.T) {
	tests := []struct {
		name  string
		group string
	}{
		{"all", "all"},
		{"ungrouped", "ungrouped"},
		{"host name", "web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			doc.Groups[tt.group] = []string{"web"}

			var buf bytes.Buffer
			err := NewAnsibleYAMLCodec().Export(doc, &buf)

			var ce *domain.ConsistencyError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Contains(t, ce.Reason, tt.group)
			assert.Zero(t, buf.Len())
		})
	}
}

// failingWriter accepts nothing
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestAnsibleYAMLExportWriteError(t *testing.T) {
	err := NewAnsibleYAMLCodec().Export(sampleDocument(), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
