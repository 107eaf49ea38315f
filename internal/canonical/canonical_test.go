package canonical

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/ir"
	"github.com/roach88/fprecon/internal/testutil"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

var (
	v2Missing = []string{"device_memory", "forced_colors", "hardware_concurrency", "pdf_viewer_enabled"}
	noHyp     = ir.Hypothesis{}
)

func TestV1_Golden(t *testing.T) {
	g := newGoldie(t)

	g.Assert(t, "v1", []byte(V1(testutil.V1Components(t))))
	g.Assert(t, "v1_no_ua", []byte(V1NoUA(testutil.MustParseComponents(t, testutil.V1ComponentsNoUAJSON))))
	g.Assert(t, "v1_no_ua_from_full", []byte(V1NoUA(testutil.V1Components(t))))
}

func TestV1_KnownHashes(t *testing.T) {
	dict := testutil.V1Components(t)

	got, err := Hash(ir.VariantV1, dict, noHyp)
	require.NoError(t, err)
	assert.Equal(t, testutil.V1Hash, got)

	got, err = Hash(ir.VariantV1NoUA, testutil.MustParseComponents(t, testutil.V1ComponentsNoUAJSON), noHyp)
	require.NoError(t, err)
	assert.Equal(t, testutil.V1NoUAHash, got)
}

func TestV1_SkipsAbsentFieldsAndIgnoresUnknown(t *testing.T) {
	dict := ir.NewObject(
		ir.P("js_fonts", ir.NewArray(ir.NewString("Arial"))),
		ir.P("unknown", ir.NewString("ignored")),
		ir.P("language", ir.NewString("fr")),
	)
	assert.Equal(t, "fr~~~Arial", V1(dict))
	assert.Equal(t, "", V1(ir.NewObject()))
}

func TestV1_ValueNormalization(t *testing.T) {
	tests := []struct {
		name  string
		value ir.Value
		want  string
	}{
		{"string", ir.NewString("en-US"), "en-US"},
		{"number", ir.NewNumber(-300), "-300"},
		{"bool", ir.NewBool(true), "true"},
		{"null", ir.Null{}, "null"},
		{"empty array", ir.Array{}, ""},
		{"array joins with semicolon", ir.NewArray(ir.NewNumber(5), ir.NewBool(true)), "5;true"},
		{"nested arrays join with comma", ir.NewArray(ir.NewArray(ir.NewString("a"), ir.NewString("b")), ir.NewString("c")), "a,b;c"},
		{"null element", ir.NewArray(ir.Null{}, ir.NewNumber(1)), "null;1"},
		{"object", ir.NewObject(ir.P("k", ir.NewNumber(1))), "[object Object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict := ir.NewObject(ir.P(KeyLanguage, tt.value))
			assert.Equal(t, tt.want, V1(dict))
		})
	}
}

func TestV1_FieldOrderIsFixed(t *testing.T) {
	// Insertion order is reversed relative to the serialization order.
	dict := ir.NewObject(
		ir.P(KeyJSFonts, ir.NewString("f")),
		ir.P(KeyAdblock, ir.NewBool(false)),
		ir.P(KeyLanguage, ir.NewString("l")),
		ir.P(KeyUserAgent, ir.NewString("ua")),
	)
	assert.Equal(t, "ua~~~l~~~false~~~f", V1(dict))
	assert.Equal(t, "l~~~false~~~f", V1NoUA(dict))
}

func TestV1Fields(t *testing.T) {
	with := V1Fields(true)
	without := V1Fields(false)

	assert.Len(t, with, 10)
	assert.Equal(t, KeyUserAgent, with[0])
	assert.Equal(t, with[1:], without)

	// Callers cannot mutate the package order.
	without[0] = "mutated"
	assert.Equal(t, KeyLanguage, V1Fields(false)[0])
}

func TestV2_ConcreteScenario(t *testing.T) {
	dict := ir.NewObject(
		ir.P("platform", ir.NewString("iPhone")),
		ir.P("language", ir.NewString("en-US")),
	)

	s := V2(dict, noHyp)
	assert.Equal(t, `language:"en-US"|platform:"iPhone"`, s)
	assert.Equal(t, "9f5f87ad89883bb183a21a79e5141fd3", ir.HashString(s, 0))
}

func TestV2_Golden(t *testing.T) {
	g := newGoldie(t)
	v2 := testutil.V2Components(t)

	g.Assert(t, "v2_direct", []byte(V2(v2, noHyp)))
	g.Assert(t, "v2_all_missing", []byte(V2(v2, ir.NewHypothesis(v2Missing, nil))))
	g.Assert(t, "v2_present_error", []byte(V2(v2, ir.NewHypothesis(nil, []string{"audio", "canvas"}))))
	g.Assert(t, "v2_subset_error", []byte(V2(
		testutil.V2ComponentsWithoutFailures(t),
		ir.NewHypothesis([]string{"hardware_concurrency"}, []string{"video_card"}),
	)))
}

func TestV2_KnownHashes(t *testing.T) {
	v2 := testutil.V2Components(t)
	all := ir.NewHypothesis(v2Missing, nil)

	assert.Equal(t, testutil.V2DirectHash, ir.HashString(V2(v2, noHyp), 0))
	assert.Equal(t, testutil.V2AllMissingHash, ir.HashString(V2(v2, all), 0))
	assert.Equal(t, testutil.V2AllMissingHash31, ir.HashString(V2(v2, all), 31))

	v2e := testutil.V2ComponentsWithoutFailures(t)
	assert.Equal(t, testutil.V2WithoutFailuresDirectHash, ir.HashString(V2(v2e, noHyp), 0))
	assert.Equal(t, testutil.V2WithoutFailuresSubsetHash, ir.HashString(V2(v2e,
		ir.NewHypothesis([]string{"hardware_concurrency"}, []string{"video_card"})), 0))
}

func TestV2_SentinelMarkers(t *testing.T) {
	dict := ir.NewObject(
		ir.P("hdr", ir.NewBool(true)),
		ir.P("audio", ir.NewNumber(1)),
	)

	tests := []struct {
		name string
		hyp  ir.Hypothesis
		want string
	}{
		{"none", noHyp, `audio:1|hdr:true`},
		{"undefined missing key", ir.Hypothesis{UndefinedKeys: []string{"canvas"}}, `audio:1|canvas:undefined|hdr:true`},
		{"undefined present key is ignored", ir.Hypothesis{UndefinedKeys: []string{"hdr"}}, `audio:1|hdr:true`},
		{"error missing key", ir.Hypothesis{ErrorKeys: []string{"canvas"}}, `audio:1|canvas:error|hdr:true`},
		{"error overrides present value", ir.Hypothesis{ErrorKeys: []string{"audio"}}, `audio:error|hdr:true`},
		{"error wins over undefined", ir.Hypothesis{UndefinedKeys: []string{"canvas"}, ErrorKeys: []string{"canvas"}}, `audio:1|canvas:error|hdr:true`},
		{"duplicates collapse", ir.Hypothesis{UndefinedKeys: []string{"zz", "zz"}}, `audio:1|hdr:true|zz:undefined`},
		{"marker keys sort with the rest", ir.Hypothesis{UndefinedKeys: []string{"b"}, ErrorKeys: []string{"a"}}, `a:error|audio:1|b:undefined|hdr:true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, V2(dict, tt.hyp))
		})
	}
}

func TestV2_ValueEncoding(t *testing.T) {
	dict := ir.NewObject(
		ir.P("n", ir.Null{}),
		ir.P("s", ir.NewString("a\"b")),
		ir.P("o", ir.NewObject(ir.P("z", ir.NewNumber(1)), ir.P("a", ir.NewNumber(2)))),
		ir.P("arr", ir.NewArray(ir.NewNumber(0.5), ir.Null{})),
	)
	// Keys sort; nested object members keep their own order.
	assert.Equal(t, `arr:[0.5,null]|n:null|o:{"z":1,"a":2}|s:"a\"b"`, V2(dict, noHyp))
}

func TestV2_EmptyDictionary(t *testing.T) {
	assert.Equal(t, "", V2(ir.NewObject(), noHyp))
	assert.Equal(t, "x:undefined", V2(ir.NewObject(), ir.Hypothesis{UndefinedKeys: []string{"x"}}))
}

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a:b", `a\:b`},
		{"a|b", `a\|b`},
		{`a\b`, `a\\b`},
		{`:|\`, `\:\|\\`},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeKey(tt.in), "key %q", tt.in)
	}

	dict := ir.NewObject(ir.P("a:b", ir.NewNumber(1)))
	assert.Equal(t, `a\:b:1`, V2(dict, noHyp))
	assert.Equal(t, `a\:b:1|c\|d:error`, V2(dict, ir.Hypothesis{ErrorKeys: []string{"c|d"}}))
}

func TestV2_KeysSortByUTF16(t *testing.T) {
	dict := ir.NewObject(
		ir.P("\uFF61", ir.NewNumber(1)),
		ir.P("\U0001F600", ir.NewNumber(2)),
		ir.P("B", ir.NewNumber(3)),
		ir.P("a", ir.NewNumber(4)),
	)
	assert.Equal(t, "B:3|a:4|\U0001F600:2|\uFF61:1", V2(dict, noHyp))
}

func TestV2Plan_ReusableAcrossHypotheses(t *testing.T) {
	dict := testutil.V2Components(t)
	plan := NewV2Plan(dict)

	hyps := []ir.Hypothesis{
		noHyp,
		ir.NewHypothesis(v2Missing, nil),
		ir.NewHypothesis(v2Missing[:1], []string{"audio"}),
		noHyp,
	}
	var buf []byte
	for _, h := range hyps {
		buf = plan.Append(buf[:0], h)
		assert.Equal(t, V2(dict, h), string(buf))
	}

	assert.True(t, plan.Has("audio"))
	assert.False(t, plan.Has("device_memory"))
	assert.Equal(t, dict.SortedKeys(), plan.Keys())
}

func TestVariantSeparation(t *testing.T) {
	// One logical dictionary hashes differently under every variant.
	dict := testutil.V1Components(t)

	h1, err := Hash(ir.VariantV1, dict, noHyp)
	require.NoError(t, err)
	h2, err := Hash(ir.VariantV1NoUA, dict, noHyp)
	require.NoError(t, err)
	h3, err := Hash(ir.VariantV2, dict, noHyp)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, h2, h3)
}

func TestSerialize_Errors(t *testing.T) {
	dict := testutil.V1Components(t)

	_, err := Serialize(ir.VariantV1, dict, ir.Hypothesis{UndefinedKeys: []string{"x"}})
	assert.ErrorContains(t, err, "no sentinel markers")

	_, err = Serialize(ir.Variant("fingerprint-v9"), dict, noHyp)
	assert.ErrorContains(t, err, "unsupported variant")
}

func TestV2_SentinelInjectionIsObservable(t *testing.T) {
	dict := testutil.V2Components(t)
	require.False(t, dict.Has("device_memory"))

	plain := ir.HashString(V2(dict, noHyp), 0)
	marked := ir.HashString(V2(dict, ir.Hypothesis{UndefinedKeys: []string{"device_memory"}}), 0)
	errored := ir.HashString(V2(dict, ir.Hypothesis{ErrorKeys: []string{"device_memory"}}), 0)

	assert.NotEqual(t, plain, marked)
	assert.NotEqual(t, plain, errored)
	assert.NotEqual(t, marked, errored)
}
