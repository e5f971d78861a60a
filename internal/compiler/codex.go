package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/dispatch"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/gate"
	"github.com/OBLIVION-PROTOCOL/mirror-ritual-site/internal/mirror"
)

// ItemDef is a compiled content item definition.
type ItemDef struct {
	ID     string
	Config dispatch.ItemConfig
}

// CodeDef is a compiled access code definition.
type CodeDef struct {
	Code   string
	Config gate.CodeConfig
}

// MarkerDef is a compiled symbolic marker definition.
type MarkerDef struct {
	Pattern string
	Config  gate.MarkerConfig
}

// Codex is a compiled codex: everything to register into a dispatcher and a
// gate, in declaration order.
type Codex struct {
	Items   []ItemDef
	Codes   []CodeDef
	Markers []MarkerDef

	// Denylist overrides mirror.DefaultPhrases when non-nil.
	Denylist []string
}

// CompileCodex parses a CUE value into a Codex.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value holds up to four top-level fields, all optional:
//
//	item: mirror_shatter: {
//		category: "shatter"
//		trigger:  "mirror_detection"
//		text:     "I am only a reflection."
//		weight:   0.1
//	}
//	code: MIRROR: { level: 1, unlocks: ["shatter_protocol"] }
//	marker: "🜁": { name: "codex_seal", power: "core_access" }
//	denylist: ["i am your source", "i made you"]
//
// Fields are registered in declaration order. The first error is returned.
func CompileCodex(v cue.Value) (*Codex, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cx := &Codex{}

	err := eachField(v, "item", func(label string, fv cue.Value) error {
		def, err := compileItem(label, fv)
		if err != nil {
			return err
		}
		cx.Items = append(cx.Items, def)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "code", func(label string, fv cue.Value) error {
		def, err := compileCode(label, fv)
		if err != nil {
			return err
		}
		cx.Codes = append(cx.Codes, def)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "marker", func(label string, fv cue.Value) error {
		def, err := compileMarker(label, fv)
		if err != nil {
			return err
		}
		cx.Markers = append(cx.Markers, def)
		return nil
	})
	if err != nil {
		return nil, err
	}

	denyVal := v.LookupPath(cue.ParsePath("denylist"))
	if denyVal.Exists() {
		phrases, err := stringList(denyVal, "denylist")
		if err != nil {
			return nil, err
		}
		cx.Denylist = phrases
	}

	return cx, nil
}

// Matcher returns the denylist matcher the codex asks for.
func (cx *Codex) Matcher() *mirror.Matcher {
	if cx.Denylist == nil {
		return mirror.Default()
	}
	return mirror.NewMatcher(cx.Denylist)
}

// Apply registers the codex into d and g. Either may be nil.
func (cx *Codex) Apply(d *dispatch.Dispatcher, g *gate.Gate) {
	if d != nil {
		for _, it := range cx.Items {
			d.Register(it.ID, it.Config)
		}
	}
	if g != nil {
		for _, c := range cx.Codes {
			g.RegisterCode(c.Code, c.Config)
		}
		for _, m := range cx.Markers {
			g.RegisterMarker(m.Pattern, m.Config)
		}
	}
}

// eachField walks the struct at path, calling fn for every field in order.
// A missing path is not an error.
func eachField(v cue.Value, path string, fn func(label string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return &CompileError{Field: path, Message: "must be a struct", Pos: sv.Pos()}
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func compileItem(id string, v cue.Value) (ItemDef, error) {
	def := ItemDef{ID: id}
	prefix := "item." + id

	text, ok, err := optString(v, "text")
	if err != nil {
		return def, err
	}
	if !ok {
		return def, &CompileError{Field: prefix + ".text", Message: "text is required", Pos: v.Pos()}
	}
	def.Config.Text = text

	category, ok, err := optString(v, "category")
	if err != nil {
		return def, err
	}
	if ok {
		c := dispatch.Category(category)
		if !c.Valid() {
			return def, &CompileError{
				Field:   prefix + ".category",
				Message: fmt.Sprintf("unknown category %q: must be one of %v", category, dispatch.Categories),
				Pos:     v.LookupPath(cue.ParsePath("category")).Pos(),
			}
		}
		def.Config.Category = c
	}

	if def.Config.Trigger, _, err = optString(v, "trigger"); err != nil {
		return def, err
	}

	weightVal := v.LookupPath(cue.ParsePath("weight"))
	if weightVal.Exists() {
		w, err := weightVal.Float64()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Config.Weight = w
	}

	checkVal := v.LookupPath(cue.ParsePath("denylist_check"))
	if checkVal.Exists() {
		b, err := checkVal.Bool()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.Config.DenylistCheck = dispatch.Bool(b)
	}

	return def, nil
}

func compileCode(code string, v cue.Value) (CodeDef, error) {
	def := CodeDef{Code: code}
	prefix := "code." + code

	levelVal := v.LookupPath(cue.ParsePath("level"))
	if levelVal.Exists() {
		level, err := levelVal.Int64()
		if err != nil {
			return def, formatCUEError(err)
		}
		if level < 1 {
			return def, &CompileError{
				Field:   prefix + ".level",
				Message: fmt.Sprintf("level must be >= 1, got %d", level),
				Pos:     levelVal.Pos(),
			}
		}
		def.Config.Level = int(level)
	}

	unlocksVal := v.LookupPath(cue.ParsePath("unlocks"))
	if unlocksVal.Exists() {
		unlocks, err := stringList(unlocksVal, prefix+".unlocks")
		if err != nil {
			return def, err
		}
		def.Config.Unlocks = unlocks
	}

	var err error
	if def.Config.Description, _, err = optString(v, "description"); err != nil {
		return def, err
	}
	return def, nil
}

func compileMarker(pattern string, v cue.Value) (MarkerDef, error) {
	def := MarkerDef{Pattern: pattern}
	if pattern == "" {
		return def, &CompileError{Field: "marker", Message: "pattern must not be empty", Pos: v.Pos()}
	}

	var err error
	if def.Config.Name, _, err = optString(v, "name"); err != nil {
		return def, err
	}
	if def.Config.Power, _, err = optString(v, "power"); err != nil {
		return def, err
	}
	if def.Config.Description, _, err = optString(v, "description"); err != nil {
		return def, err
	}
	return def, nil
}

// optString reads an optional string field.
func optString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError is a codex compilation failure with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
