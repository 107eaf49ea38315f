package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/canonical"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

func TestSerializeV1(t *testing.T) {
	input := batchInput(t, record(string(ir.VariantV1), testutil.V1ComponentsJSON, testutil.V1Hash))

	out, err := execute(t, NewSerializeCommand(&RootOptions{Format: "text"}), input)
	require.NoError(t, err)
	assert.Equal(t, canonical.V1(testutil.V1Components(t))+"\n", out)
}

func TestSerializeJSONHashesAtVariantSeed(t *testing.T) {
	input := batchInput(t,
		record(string(ir.VariantV1), testutil.V1ComponentsJSON, testutil.V1Hash),
		record(string(ir.VariantV1NoUA), testutil.V1ComponentsNoUAJSON, testutil.V1NoUAHash),
	)

	out, err := execute(t, NewSerializeCommand(&RootOptions{Format: "json"}), "--index", "1", input)
	require.NoError(t, err)

	var got SerializeResult
	decodeResponse(t, out, &got)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, ir.VariantV1NoUA, got.Version)
	assert.Equal(t, uint32(31), got.Seed)
	assert.Equal(t, testutil.V1NoUAHash, got.Hash)
}

func TestSerializeV2Hypothesis(t *testing.T) {
	input := batchInput(t, record(string(ir.VariantV2), tinyComponents, tinySubsetHash))

	out, err := execute(t, NewSerializeCommand(&RootOptions{Format: "json"}),
		"--undefined", "hdr", "--error", "canvas", "--seed", "31", input)
	require.NoError(t, err)

	var got SerializeResult
	decodeResponse(t, out, &got)
	assert.Equal(t, `canvas:error|fonts:["Arial"]|hdr:undefined|timezone:"Europe/Berlin"`, got.Serialized)
	assert.Equal(t, uint32(31), got.Seed)
	assert.Equal(t, tinySubsetHash, got.Hash)
}

func TestSerializeV2Direct(t *testing.T) {
	input := batchInput(t, record(string(ir.VariantV2), testutil.V2ComponentsJSON, testutil.V2DirectHash))

	out, err := execute(t, NewSerializeCommand(&RootOptions{Format: "json"}), input)
	require.NoError(t, err)

	var got SerializeResult
	decodeResponse(t, out, &got)
	assert.Equal(t, uint32(0), got.Seed)
	assert.Equal(t, testutil.V2DirectHash, got.Hash)
}

func TestSerializeErrors(t *testing.T) {
	v1 := batchInput(t, record(string(ir.VariantV1), testutil.V1ComponentsJSON, testutil.V1Hash))
	bad := batchInput(t,
		record("fingerprint-v9", `{}`, testutil.UnmatchableHash),
		record(string(ir.VariantV2), `[1,2]`, testutil.UnmatchableHash),
	)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"index out of range", []string{"--index", "1", v1}, "index 1 out of range"},
		{"negative index", []string{"--index", "-1", v1}, "out of range"},
		{"markers on v1", []string{"--undefined", "hdr", v1}, "no sentinel markers"},
		{"unsupported variant", []string{bad}, "UNSUPPORTED_VARIANT"},
		{"malformed components", []string{"--index", "1", bad}, "MALFORMED_COMPONENTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewSerializeCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
