package engine

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/errors"
)

// Signature is one function of the runtime's WIT API manifest.
type Signature struct {
	Name    string
	Params  []wit.Type
	Results []wit.Type
}

// funcPattern matches `[export] name: func(params) -> result;` lines.
var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// ParseManifest extracts function signatures from the WIT text the runtime
// ships alongside its binary. Parameter and result type names must be valid
// WIT types.
func ParseManifest(witText string) (map[string]*Signature, error) {
	sigs := make(map[string]*Signature)

	matches := funcPattern.FindAllStringSubmatch(witText, -1)
	for _, match := range matches {
		sig := &Signature{Name: match[1]}

		paramsStr := strings.TrimSpace(match[2])
		if paramsStr != "" {
			for _, p := range strings.Split(paramsStr, ",") {
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					typStr = p[idx+1:]
				}
				t, err := wit.ParseType(strings.TrimSpace(typStr))
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err,
						"parse param type "+strings.TrimSpace(typStr))
				}
				sig.Params = append(sig.Params, t)
			}
		}

		resultStr := strings.TrimSpace(match[3])
		if resultStr != "" && resultStr != "()" {
			t, err := wit.ParseType(resultStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err,
					"parse result type "+resultStr)
			}
			sig.Results = []wit.Type{t}
		}

		sigs[sig.Name] = sig
	}

	if len(sigs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no functions found in manifest")
	}

	return sigs, nil
}

// ValidateManifest checks the manifest against the FuncID table: every
// entry of the native API surface must be declared with the expected param
// count and result presence. Extra manifest functions are tolerated; a
// missing or misshapen one fails loudly before any export is resolved.
func ValidateManifest(witText string) error {
	sigs, err := ParseManifest(witText)
	if err != nil {
		return err
	}

	for fn := scenebridge.FuncID(0); fn < scenebridge.FuncCount; fn++ {
		entry := apiTable[fn]
		sig, ok := sigs[entry.name]
		if !ok {
			return errors.NotFound(errors.PhaseLoad, "manifest function", entry.name)
		}
		if len(sig.Params) != entry.params {
			return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Entity(entry.name).
				Detail("manifest declares %d params, table expects %d", len(sig.Params), entry.params).
				Build()
		}
		if (len(sig.Results) > 0) != entry.hasResult {
			return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Entity(entry.name).
				Detail("manifest result presence %v, table expects %v", len(sig.Results) > 0, entry.hasResult).
				Build()
		}
	}
	return nil
}

// ManifestText renders the full API surface as WIT function declarations.
// The CLI uses it to print the expected ABI, and tests use it as a known
// good manifest.
func ManifestText() string {
	var b strings.Builder
	for fn := scenebridge.FuncID(0); fn < scenebridge.FuncCount; fn++ {
		entry := apiTable[fn]
		b.WriteString(entry.name)
		b.WriteString(": func(")
		for i := 0; i < entry.params; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("a")
			b.WriteByte(byte('0' + i))
			b.WriteString(": s32")
		}
		b.WriteString(")")
		if entry.hasResult {
			b.WriteString(" -> s32")
		}
		b.WriteString(";\n")
	}
	return b.String()
}
