// Package catalog loads the static part of the Spark task form: the select
// options, the layout weights, the numeric bounds and the record defaults.
// They are declared in spark.cue, embedded in the binary and decoded with
// CUE so the constraints written next to them are checked at load time.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/matthewbaird/taskform/internal/types"
)

//go:embed spark.cue
var sparkCUE []byte

// Option is one entry of a static select or radio field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Layout holds span weights on a 24-column grid.
type Layout struct {
	FullRow     int `json:"full_row"`
	HalfRow     int `json:"half_row"`
	ParamColumn int `json:"param_column"`
}

// Limits holds numeric bounds passed to input widgets.
type Limits struct {
	MinCores       int `json:"min_cores"`
	ParamMaxLength int `json:"param_max_length"`
}

// Catalog is the decoded spark.cue document.
type Catalog struct {
	ProgramTypes           []Option        `json:"program_types"`
	InterpretedProgramType string          `json:"interpreted_program_type"`
	SparkVersions          []Option        `json:"spark_versions"`
	DeployModes            []Option        `json:"deploy_modes"`
	Layout                 Layout          `json:"layout"`
	Limits                 Limits          `json:"limits"`
	Defaults               types.SparkTask `json:"defaults"`
}

// Parse compiles a catalog document, checks that it is concrete and decodes it.
func Parse(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling %s: %w", filename, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating %s: %w", filename, err)
	}

	var c Catalog
	if err := v.Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	if !Contains(c.ProgramTypes, c.InterpretedProgramType) {
		return nil, fmt.Errorf("%s: interpreted program type %q is not a program type", filename, c.InterpretedProgramType)
	}
	return &c, nil
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Load returns the embedded catalog, decoding it on first use.
func Load() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse("spark.cue", sparkCUE)
	})
	return loaded, loadErr
}

// MustLoad is Load for callers that treat a broken embedded catalog as a
// build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// NewTask returns a record initialised with the catalog defaults.
func (c *Catalog) NewTask() types.SparkTask {
	return c.Defaults.Clone()
}

// IsInterpreted reports whether programType needs no main class or jar.
func (c *Catalog) IsInterpreted(programType string) bool {
	return programType == c.InterpretedProgramType
}

// Contains reports whether value is one of the options.
func Contains(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

// OptionNodes converts static options for a descriptor's options source.
func OptionNodes(opts []Option) []types.OptionNode {
	out := make([]types.OptionNode, len(opts))
	for i, o := range opts {
		out[i] = types.OptionNode{Value: o.Value, Label: o.Label}
	}
	return out
}
