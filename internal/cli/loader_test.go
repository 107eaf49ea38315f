package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/compiler"
	"github.com/roach88/fprecon/internal/ir"
)

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("", "")
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultProfileName, p.Name)

	p, err = LoadProfile(tinyProfilePath, "tiny")
	require.NoError(t, err)
	assert.Equal(t, "tiny", p.Name)
}

func TestLoadProfileErrorCodes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
		return path
	}

	tests := []struct {
		name     string
		path     string
		profile  string
		wantCode string
	}{
		{"not found", filepath.Join(dir, "absent.cue"), "", ErrCodeNotFound},
		{"candidate not known", write("cand.cue", `profile: p: { known_keys: ["a"], error_candidates: ["b"] }`), "", compiler.ErrCandidateNotKnown},
		{"duplicate seed", write("seed.cue", `profile: p: { known_keys: ["a"], seeds: [7, 7] }`), "", compiler.ErrDuplicateSeed},
		{"unknown name", tinyProfilePath, "nope", ErrCodeProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(tt.path, tt.profile)
			require.Error(t, err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantCode, le.Code)
		})
	}
}

func TestLoadProfileKeepsCUEPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte("profile: p: { known_keys: [\"a\"], seeds: [0, 0] }\n"), 0644))

	_, err := LoadProfile(path, "")
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, le.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.cue:1:")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"known_keys", ErrCodeMissingKnownKeys},
		{"seeds", ErrCodeInvalidField},
		{"seeds[0]", ErrCodeInvalidField},
		{"max_undefined_bits", ErrCodeInvalidField},
		{"cue", ErrCodeLoadFailed},
		{"something_else", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}
