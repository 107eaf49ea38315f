package canonical

import (
	"strings"

	"github.com/roach88/fprecon/internal/ir"
)

// V1 component keys.
const (
	KeyUserAgent           = "user_agent"
	KeyLanguage            = "language"
	KeyResolution          = "resolution"
	KeyAvailableResolution = "available_resolution"
	KeyTimezoneOffset      = "timezone_offset"
	KeyNavigatorPlatform   = "navigator_platform"
	KeyRegularPlugins      = "regular_plugins"
	KeyAdblock             = "adblock"
	KeyTouchSupport        = "touch_support"
	KeyJSFonts             = "js_fonts"
)

// V1Separator joins V1 fields.
const V1Separator = "~~~"

// v1BaseOrder is the V1 field order after the identity string.
var v1BaseOrder = []string{
	KeyLanguage,
	KeyResolution,
	KeyAvailableResolution,
	KeyTimezoneOffset,
	KeyNavigatorPlatform,
	KeyRegularPlugins,
	KeyAdblock,
	KeyTouchSupport,
	KeyJSFonts,
}

// V1Fields returns the V1 field order, with or without the identity string.
func V1Fields(includeUserAgent bool) []string {
	if !includeUserAgent {
		return append([]string(nil), v1BaseOrder...)
	}
	return append([]string{KeyUserAgent}, v1BaseOrder...)
}

// V1 serializes dict in the V1 layout, identity string included.
func V1(dict ir.Object) string {
	return buildV1(dict, true)
}

// V1NoUA serializes dict in the V1 layout without the identity string.
// A user_agent member in dict is ignored.
func V1NoUA(dict ir.Object) string {
	return buildV1(dict, false)
}

// buildV1 joins the present fields in fixed order. Fields missing from dict
// are skipped entirely; V1 has no sentinel markers.
func buildV1(dict ir.Object, includeUserAgent bool) string {
	values := make([]string, 0, len(v1BaseOrder)+1)
	for _, k := range V1Fields(includeUserAgent) {
		v, ok := dict.Get(k)
		if !ok {
			continue
		}
		values = append(values, normalizeV1Value(v))
	}
	return strings.Join(values, V1Separator)
}

// normalizeV1Value stringifies a field: sequences join their String()-coerced
// elements with ";", everything else is String()-coerced as a whole.
func normalizeV1Value(v ir.Value) string {
	arr, ok := v.(ir.Array)
	if !ok {
		return ir.ToString(v)
	}
	parts := make([]string, len(arr))
	for i, elem := range arr {
		parts[i] = ir.ToString(elem)
	}
	return strings.Join(parts, ";")
}
