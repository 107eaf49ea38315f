package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/ir"
)

func TestLoadProfiles_File(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join("testdata", "fpjs_v3.cue"))
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "fpjs_v3", profiles[0].Name)
	assert.Equal(t, "quick", profiles[1].Name)
}

func TestLoadProfiles_Directory(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join("testdata", "dir"))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	names := []string{profiles[0].Name, profiles[1].Name}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}

func TestLoadProfiles_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "nope.cue")},
		{"syntax", write("syntax.cue", `profile: p: {`)},
		{"no profile struct", write("empty.cue", `other: 1`)},
		{"empty profile struct", write("none.cue", `profile: {}`)},
		{"invalid profile", write("bad.cue", `profile: p: { known_keys: [1] }`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfiles(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestSelectProfile(t *testing.T) {
	a := ir.Profile{Name: "a"}
	b := ir.Profile{Name: "b"}

	got, err := SelectProfile([]ir.Profile{a}, "")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	got, err = SelectProfile([]ir.Profile{a, b}, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)

	_, err = SelectProfile([]ir.Profile{a, b}, "")
	assert.ErrorContains(t, err, "choose one by name")

	_, err = SelectProfile([]ir.Profile{a, b}, "c")
	assert.ErrorContains(t, err, `"c" not found`)
}

func TestResolveProfile(t *testing.T) {
	p, err := ResolveProfile("", "")
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultProfile(), p)

	p, err = ResolveProfile("", ir.DefaultProfileName)
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultProfileName, p.Name)

	_, err = ResolveProfile("", "quick")
	assert.Error(t, err)

	p, err = ResolveProfile(filepath.Join("testdata", "fpjs_v3.cue"), "quick")
	require.NoError(t, err)
	assert.Equal(t, 1000, p.MaxEvaluations)
}
