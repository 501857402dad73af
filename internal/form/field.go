// Package form builds the ordered field descriptors of the Spark task form.
//
// A descriptor never holds a snapshot of the record: its span, its
// requiredness, its options and its validation rule are signals and
// closures bound to the live model and to the option loader, so one
// descriptor list serves a whole editing session. Renderers either read the
// signals directly or call Render before each paint.
package form

import (
	"github.com/matthewbaird/taskform/internal/reactive"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// Kind is the widget a descriptor asks the renderer for.
type Kind string

const (
	KindSelect           Kind = "select"
	KindInput            Kind = "input"
	KindInputNumber      Kind = "input-number"
	KindTreeSelect       Kind = "tree-select"
	KindRadio            Kind = "radio"
	KindCustomParameters Kind = "custom-parameters"
)

// Props configures the widget.
type Props struct {
	Placeholder   string `json:"placeholder,omitempty"`
	Type          string `json:"type,omitempty"` // "textarea" for multi-line inputs
	Min           *int   `json:"min,omitempty"`
	MaxLength     int    `json:"max_length,omitempty"`
	Multiple      bool   `json:"multiple,omitempty"`
	Checkable     bool   `json:"checkable,omitempty"`
	Cascade       bool   `json:"cascade,omitempty"`
	ShowPath      bool   `json:"show_path,omitempty"`
	CheckStrategy string `json:"check_strategy,omitempty"` // "child": only leaves are selectable
	KeyField      string `json:"key_field,omitempty"`
	LabelField    string `json:"label_field,omitempty"`
}

// Validation binds a rule to the renderer events that run it.
type Validation struct {
	Triggers []validate.Trigger
	Required reactive.Signal[bool]
	Rule     validate.Rule
}

// Field describes one renderable field.
type Field struct {
	Kind     Kind
	Name     string // bound field name
	Label    string
	Span     reactive.Signal[int]
	Props    Props
	Options  reactive.Signal[[]types.OptionNode]
	Validate *Validation
	Children []Field
}

// RenderedField is a Field with every signal resolved, in the shape a
// remote renderer consumes.
type RenderedField struct {
	Kind     Kind                `json:"type"`
	Field    string              `json:"field"`
	Span     int                 `json:"span"`
	Hidden   bool                `json:"hidden,omitempty"`
	Label    string              `json:"name"`
	Props    Props               `json:"props"`
	Options  []types.OptionNode  `json:"options,omitempty"`
	Validate *RenderedValidation `json:"validate,omitempty"`
	Children []RenderedField     `json:"children,omitempty"`
}

// RenderedValidation is the resolved part of a Validation. The rule itself
// stays server side.
type RenderedValidation struct {
	Trigger  []validate.Trigger `json:"trigger"`
	Required bool               `json:"required"`
}

// Render resolves f for the current state.
func (f Field) Render() RenderedField {
	r := RenderedField{
		Kind:  f.Kind,
		Field: f.Name,
		Label: f.Label,
		Props: f.Props,
	}
	if f.Span != nil {
		r.Span = f.Span.Get()
		r.Hidden = r.Span == 0
	}
	if f.Options != nil {
		r.Options = f.Options.Get()
	}
	if f.Validate != nil {
		rv := &RenderedValidation{Trigger: f.Validate.Triggers}
		if f.Validate.Required != nil {
			rv.Required = f.Validate.Required.Get()
		}
		r.Validate = rv
	}
	for _, c := range f.Children {
		r.Children = append(r.Children, c.Render())
	}
	return r
}

// Render resolves a descriptor list.
func Render(fields []Field) []RenderedField {
	out := make([]RenderedField, len(fields))
	for i, f := range fields {
		out[i] = f.Render()
	}
	return out
}
