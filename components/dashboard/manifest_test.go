package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: compact
sections:
  - section: overview
    bindings: [current-price, main-stock-chart]
  - section: models
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "compact", doc.Name)
	require.Len(t, doc.Sections, 2)

	view, err := doc.NewView(NewRegistry())
	require.NoError(t, err)
	assert.True(t, view.Has(BindingLastUpdated))
	assert.True(t, view.Has(BindingCurrentPrice))
	assert.True(t, view.Has(MountModelComparisonChart))
	assert.True(t, view.Has(BindingModelPerformanceTable))
	assert.False(t, view.Has(BindingPriceChange))
	assert.False(t, view.Has(MountPredictionChart))
}

func TestDecodeManifestRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"version":         "version: 2\nsections: []\n",
		"unknown section": "sections:\n  - section: portfolio\n",
		"dup section":     "sections:\n  - section: overview\n  - section: overview\n",
		"dup binding":     "sections:\n  - section: overview\n    bindings: [current-price]\n  - section: analysis\n    bindings: [current-price]\n",
		"unknown field":   "sections: []\nwidgets: []\n",
	}
	for name, payload := range cases {
		if _, err := DecodeManifest(strings.NewReader(payload)); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestManifestRejectsForeignBinding(t *testing.T) {
	doc := &ViewManifest{Version: ManifestVersion, Sections: []ManifestSection{
		{Section: SectionModels, Bindings: []string{BindingCurrentPrice}},
	}}
	_, err := doc.NewView(NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not own")
}

func TestDefaultViewManifestMountsEverything(t *testing.T) {
	reg := NewRegistry()
	view, err := DefaultViewManifest(reg).NewView(reg)
	require.NoError(t, err)
	for _, binding := range DefaultBindings() {
		assert.True(t, view.Has(binding), binding)
	}
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "view.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nsections:\n  - section: insights\n"), 0o600))

	doc, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	_, err = ReadManifest(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicateBindings(t *testing.T) {
	reg := NewRegistry()
	err := reg.RegisterPlan(SectionPlan{
		Section: SectionInsights,
		Panels: []PanelBinding{
			{Binding: BindingKeyLevels, Build: keyLevels},
			{Binding: BindingKeyLevels, Build: keyLevels},
		},
	})
	require.Error(t, err)

	owner, ok := reg.Owner(BindingHistoricalDataTable)
	require.True(t, ok)
	assert.Equal(t, SectionDataTables, owner)
}
