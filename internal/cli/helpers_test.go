package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/engine"
	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

// Profiles and scenarios shared with the harness package.
const (
	tinyProfilePath   = "../harness/testdata/profiles/tiny.cue"
	harnessScenarios  = "../harness/testdata/scenarios"
	harnessGoldenDir  = "../harness/testdata/golden"
	tinyComponents    = `{"fonts":["Arial"],"timezone":"Europe/Berlin"}`
	tinySubsetHash    = "bcfd54ab1fe3a8e041c9b8e141b38a00" // hdr undefined, canvas errored, seed 31
	tinyUnmatchedCalc = "ca7ccff5c72ee27a2cc370dfdb3c347f" // direct hash of tinyComponents
)

// missingV2Keys are the default-profile keys absent from testutil.V2ComponentsJSON,
// in profile order.
var missingV2Keys = []string{"device_memory", "forced_colors", "hardware_concurrency", "pdf_viewer_enabled"}

type inputRecord struct {
	Components  json.RawMessage `json:"components"`
	Fingerprint string          `json:"fingerprint"`
	Version     string          `json:"version"`
}

func record(version, components, fingerprint string) inputRecord {
	return inputRecord{Components: json.RawMessage(components), Fingerprint: fingerprint, Version: version}
}

// batchInput renders records as an inline batch document.
func batchInput(t *testing.T, records ...inputRecord) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"fingerprints": records})
	require.NoError(t, err)
	return string(data)
}

// mixedBatch has one record of each variant plus one with an unknown variant.
func mixedBatch(t *testing.T) string {
	return batchInput(t,
		record(string(ir.VariantV1), testutil.V1ComponentsJSON, testutil.V1Hash),
		record(string(ir.VariantV1NoUA), testutil.V1ComponentsNoUAJSON, testutil.V1NoUAHash),
		record(string(ir.VariantV2), testutil.V2ComponentsJSON, testutil.V2AllMissingHash),
		record("fingerprint-v9", `{}`, testutil.UnmatchableHash),
	)
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func decodeDocument(t *testing.T, out string) engine.Document {
	t.Helper()
	var doc engine.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc), "output: %s", out)
	return doc
}

func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, data))
	}
	return resp
}
