package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedContainsGemstonePersonas(t *testing.T) {
	items := Seed()
	require.Len(t, items, 2)

	store := NewMemoryStore(items)

	sapphire, ok := store.FindByID("blue_sapphire_customer")
	require.True(t, ok)
	assert.Equal(t, "Amateur", sapphire.Name)
	assert.Equal(t, "echo", sapphire.Voice())
	assert.Equal(t, "Neelam", sapphire.StoneHindi)

	ruby, ok := store.FindByID("ruby_customer")
	require.True(t, ok)
	assert.Equal(t, "Pro", ruby.Name)
	assert.Equal(t, "Hard", ruby.Difficulty)

	for _, item := range items {
		assert.Contains(t, item.Script, "NO QUESTION LOOPING", "shared rules appended to %s", item.ID)
	}
}

func TestSummaryOmitsScript(t *testing.T) {
	p := Persona{ID: "x", Name: "X", Script: "secret"}
	s := p.Summary()
	assert.Equal(t, "x", s.Key)
	assert.Equal(t, "X", s.Name)
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"empty":       "personas: []",
		"missing key": "personas:\n  - name: A\n    script: hi\n",
		"duplicate":   "personas:\n  - key: a\n    script: x\n  - key: a\n    script: y\n",
		"no script":   "personas:\n  - key: a\n",
		"bad yaml":    "personas: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParseDefaultsVoiceAndName(t *testing.T) {
	items, err := Parse([]byte("personas:\n  - key: walkin\n    script: Be brief.\n"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, DefaultVoice, items[0].VoiceID)
	assert.Equal(t, "walkin", items[0].Name)
	assert.Equal(t, "Be brief.", items[0].Script)
}

func TestLoadFile(t *testing.T) {
	items, err := LoadFile("")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	path := filepath.Join(t.TempDir(), "personas.yaml")
	data := "sharedRules: Stay polite.\npersonas:\n  - key: emerald_customer\n    name: Rookie\n    script: Ask about Panna.\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	items, err = LoadFile(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, strings.HasSuffix(items[0].Script, "Stay polite."))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMemoryStoreListKeepsOrder(t *testing.T) {
	store := NewMemoryStore([]Persona{{ID: "b"}, {ID: "a"}})
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	list[0].ID = "mutated"
	_, ok := store.FindByID("b")
	assert.True(t, ok)
	_, ok = store.FindByID("missing")
	assert.False(t, ok)
}
