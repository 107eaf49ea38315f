package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/fprecon/internal/ir"
)

// LoadProfiles compiles every profile declared in path.
//
// path is either a single .cue file or a directory, in which case the CUE
// package in that directory is loaded as one instance.
func LoadProfiles(path string) ([]ir.Profile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("profile path: %w", err)
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("no CUE instances in %s", path)
		}
		if err := instances[0].Err; err != nil {
			return nil, formatCUEError(err)
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		value = ctx.CompileBytes(data, cue.Filename(filepath.Base(path)))
	}
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	profilesVal := value.LookupPath(cue.ParsePath("profile"))
	if !profilesVal.Exists() {
		return nil, &CompileError{
			Field:   "profile",
			Message: fmt.Sprintf("no profile struct in %s", path),
		}
	}
	profiles, err := CompileProfiles(profilesVal)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, &CompileError{Field: "profile", Message: fmt.Sprintf("no profiles declared in %s", path)}
	}
	return profiles, nil
}

// SelectProfile picks the profile called name, or the only profile when
// name is empty.
func SelectProfile(profiles []ir.Profile, name string) (ir.Profile, error) {
	if name == "" {
		if len(profiles) == 1 {
			return profiles[0], nil
		}
		names := make([]string, len(profiles))
		for i, p := range profiles {
			names[i] = p.Name
		}
		return ir.Profile{}, fmt.Errorf("%d profiles declared %v; choose one by name", len(profiles), names)
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return ir.Profile{}, fmt.Errorf("profile %q not found", name)
}

// ResolveProfile loads path and selects name from it. An empty path yields
// the built-in default profile, which name must match if set.
func ResolveProfile(path, name string) (ir.Profile, error) {
	if path == "" {
		p := ir.DefaultProfile()
		if name != "" && name != p.Name {
			return ir.Profile{}, fmt.Errorf("profile %q not found (no profile path given)", name)
		}
		return p, nil
	}
	profiles, err := LoadProfiles(path)
	if err != nil {
		return ir.Profile{}, err
	}
	return SelectProfile(profiles, name)
}
