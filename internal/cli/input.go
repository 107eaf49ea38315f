package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roach88/fprecon/internal/ir"
)

// readInput reads the batch document named by arg: an inline JSON literal
// starting with '{', "-" for stdin, or a file path.
func readInput(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(strings.TrimSpace(arg), "{"):
		return []byte(arg), nil
	default:
		return os.ReadFile(arg)
	}
}

// ParseInput decodes a batch document into raw records.
//
// The document is {"fingerprints": [{components, fingerprint, version}, ...]},
// optionally wrapped as {"result": "<document as a JSON string>"}.
// components may be an object or a string holding one. Records keep their
// position in the array as index; per-record problems are left for the
// engine to report, so one bad record never rejects the batch.
func ParseInput(data []byte) ([]ir.RawRecord, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if wrapped := doc.Get("result"); wrapped.Type == gjson.String {
		doc, err = parseDocument([]byte(wrapped.String()))
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
	}

	fps := doc.Get("fingerprints")
	if !fps.IsArray() {
		return nil, errors.New("input has no fingerprints array")
	}

	items := fps.Array()
	raws := make([]ir.RawRecord, len(items))
	for i, fp := range items {
		raws[i] = ir.RawRecord{
			Index:       i,
			Version:     fp.Get("version").String(),
			Components:  componentsBytes(fp.Get("components")),
			Fingerprint: fp.Get("fingerprint").String(),
		}
	}
	return raws, nil
}

func parseDocument(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("input is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, errors.New("input must be a JSON object")
	}
	return doc, nil
}

func componentsBytes(c gjson.Result) []byte {
	switch {
	case !c.Exists():
		return nil
	case c.Type == gjson.String:
		return []byte(c.String())
	default:
		return []byte(c.Raw)
	}
}

// loadInput reads and decodes the batch document named by arg.
func loadInput(arg string, stdin io.Reader) ([]ir.RawRecord, error) {
	data, err := readInput(arg, stdin)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read input", err)
	}
	raws, err := ParseInput(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid input", err)
	}
	return raws, nil
}
