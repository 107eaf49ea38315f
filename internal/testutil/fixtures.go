package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fprecon/internal/ir"
)

// V1ComponentsJSON is a component dictionary captured by a v1 library on a phone.
const V1ComponentsJSON = `{"user_agent":"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1","language":"en-US","resolution":[390,844],"available_resolution":[390,844],"timezone_offset":-300,"navigator_platform":"iPhone","regular_plugins":[],"adblock":false,"touch_support":[5,true,true],"js_fonts":["American Typewriter","Arial","Avenir","Courier New","Georgia","Helvetica Neue","Menlo","Zapfino"]}`

// V1ComponentsNoUAJSON is V1ComponentsJSON without the identity string.
const V1ComponentsNoUAJSON = `{"language":"en-US","resolution":[390,844],"available_resolution":[390,844],"timezone_offset":-300,"navigator_platform":"iPhone","regular_plugins":[],"adblock":false,"touch_support":[5,true,true],"js_fonts":["American Typewriter","Arial","Avenir","Courier New","Georgia","Helvetica Neue","Menlo","Zapfino"]}`

// Hashes of the v1 fixtures, seed 31.
const (
	V1Hash     = "45b4900d3ef7ef0925c889cefaf4e765"
	V1NoUAHash = "492499caf5626203dd4d5889201c4a24"
)

// V2ComponentsJSON is a v2 dictionary missing device_memory, forced_colors,
// hardware_concurrency and pdf_viewer_enabled.
const V2ComponentsJSON = `{"fonts":["American Typewriter","Arial","Avenir","Courier New"],"dom_blockers":[],"font_preferences":{"default":149.31,"apple":152.5,"serif":149.31,"sans":144.02,"mono":132.75,"min":9.23,"system":147.66},"audio":124.04,"screen_frame":[0,0,0,0],"languages":[["en-US"],["en-US"]],"screen_resolution":[390,844],"timezone":"America/New_York","indexed_db":true,"open_database":false,"platform":"iPhone","plugins":[],"canvas":{"winding":true,"geometry":"data:image/png;base64,iVBORw0KGgo=","text":"data:image/png;base64,AAAA"},"touch_support":{"maxTouchPoints":5,"touchEvent":true,"touchStart":true},"vendor_flavors":[],"color_gamut":"p3","inverted_colors":false,"monochrome":0,"contrast":0,"reduced_motion":false,"hdr":true,"math":{"acos":1.45,"acosh":709.89,"asin":0.16,"powPI":1.9275814160560204e-50,"tan":-1.4214488238747245},"video_card":{"vendor":"Apple Inc.","renderer":"Apple GPU"}}`

// Hashes of V2ComponentsJSON under the hypotheses the search tries first.
const (
	V2DirectHash       = "9102e47195dc7bee91c16b6e745d86e4"
	V2AllMissingHash   = "36d30b816e473d47cc93739275c5e122" // seed 0
	V2AllMissingHash31 = "0b3adfd812469ed4f4f9ff35a858b821" // seed 31
)

// V2ComponentsWithoutFailuresJSON is V2ComponentsJSON without canvas and
// video_card, the shape left behind when those collectors throw.
const V2ComponentsWithoutFailuresJSON = `{"fonts":["American Typewriter","Arial","Avenir","Courier New"],"dom_blockers":[],"font_preferences":{"default":149.31,"apple":152.5,"serif":149.31,"sans":144.02,"mono":132.75,"min":9.23,"system":147.66},"audio":124.04,"screen_frame":[0,0,0,0],"languages":[["en-US"],["en-US"]],"screen_resolution":[390,844],"timezone":"America/New_York","indexed_db":true,"open_database":false,"platform":"iPhone","plugins":[],"touch_support":{"maxTouchPoints":5,"touchEvent":true,"touchStart":true},"vendor_flavors":[],"color_gamut":"p3","inverted_colors":false,"monochrome":0,"contrast":0,"reduced_motion":false,"hdr":true,"math":{"acos":1.45,"acosh":709.89,"asin":0.16,"powPI":1.9275814160560204e-50,"tan":-1.4214488238747245}}`

// Hashes of V2ComponentsWithoutFailuresJSON.
const (
	V2WithoutFailuresDirectHash = "09a2ef93ce9169b4077a3298f30c17db"

	// Matches with hardware_concurrency undefined and video_card errored, seed 0.
	V2WithoutFailuresSubsetHash = "7b210cde031779643228ebca348d49c9"
)

// UnmatchableHash is a target no fixture reaches.
const UnmatchableHash = "ffffffffffffffffffffffffffffffff"

// MustParseComponents decodes a component dictionary or fails the test.
func MustParseComponents(t testing.TB, data string) ir.Object {
	t.Helper()
	obj, err := ir.ParseObject([]byte(data))
	require.NoError(t, err)
	return obj
}

// V1Components returns the parsed v1 fixture.
func V1Components(t testing.TB) ir.Object {
	return MustParseComponents(t, V1ComponentsJSON)
}

// V2Components returns the parsed v2 fixture.
func V2Components(t testing.TB) ir.Object {
	return MustParseComponents(t, V2ComponentsJSON)
}

// V2ComponentsWithoutFailures returns the parsed v2 fixture without canvas and video_card.
func V2ComponentsWithoutFailures(t testing.TB) ir.Object {
	return MustParseComponents(t, V2ComponentsWithoutFailuresJSON)
}
