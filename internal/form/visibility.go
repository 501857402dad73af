package form

import (
	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/reactive"
)

// MainClassSpan is the span of the main class input: hidden for the
// interpreted program type, a full row otherwise.
func MainClassSpan(c *catalog.Catalog, programType string) int {
	if c.IsInterpreted(programType) {
		return 0
	}
	return c.Layout.FullRow
}

// ArtifactRequired reports whether main class and main jar must be set.
func ArtifactRequired(c *catalog.Catalog, programType string) bool {
	return !c.IsInterpreted(programType)
}

// programTypeSource is the part of the model the derived signals read.
type programTypeSource interface {
	ProgramType() string
}

func mainClassSpanSignal(c *catalog.Catalog, src programTypeSource) reactive.Signal[int] {
	return reactive.NewComputed(func() int { return MainClassSpan(c, src.ProgramType()) })
}

func artifactRequiredSignal(c *catalog.Catalog, src programTypeSource) reactive.Signal[bool] {
	return reactive.NewComputed(func() bool { return ArtifactRequired(c, src.ProgramType()) })
}
