package form

import (
	"context"
	"fmt"

	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/i18n"
	"github.com/matthewbaird/taskform/internal/model"
	"github.com/matthewbaird/taskform/internal/reactive"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// Child field names of the local parameter group.
const (
	ParamProp  = "prop"
	ParamValue = "value"
)

// Builder owns the descriptor list of one editing session.
type Builder struct {
	ctx     context.Context
	model   *model.Model
	loader  *resource.Loader
	catalog *catalog.Catalog
	tr      i18n.Translator

	fields []Field
	byName map[string]*Field
	prop   validate.Rule
}

// Option configures a Builder.
type Option func(*Builder)

// WithCatalog replaces the embedded catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(b *Builder) { b.catalog = c }
}

// WithTranslator sets the label lookup. Labels default to their keys.
func WithTranslator(tr i18n.Translator) Option {
	return func(b *Builder) { b.tr = tr }
}

// New binds a Builder to m, installs the program type hooks and starts
// loading options for the current program type. ctx bounds the background
// fetches. It fails with model.ErrAlreadyBound when m already has a Builder.
func New(ctx context.Context, m *model.Model, loader *resource.Loader, opts ...Option) (*Builder, error) {
	if err := m.Bind(); err != nil {
		return nil, err
	}
	b := &Builder{
		ctx:    ctx,
		model:  m,
		loader: loader,
		tr:     i18n.Identity,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.catalog == nil {
		c, err := catalog.Load()
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		b.catalog = c
	}

	b.fields = b.build()
	b.byName = make(map[string]*Field, len(b.fields)+2)
	for i := range b.fields {
		f := &b.fields[i]
		b.byName[f.Name] = f
		for j := range f.Children {
			c := &f.Children[j]
			b.byName[f.Name+"."+c.Name] = c
		}
	}

	m.OnWrite(model.FieldProgramType, func(t *types.SparkTask) {
		t.MainJar = ""
		t.MainClass = ""
	})
	m.Watch(model.FieldProgramType, func(c model.Change) {
		loader.Prefetch(b.ctx, fmt.Sprint(c.Value))
	})
	loader.Prefetch(ctx, m.ProgramType())
	return b, nil
}

// Close releases the model so another Builder may bind it. Hooks already
// installed stay in place.
func (b *Builder) Close() {
	b.model.Release()
}

// Model returns the record the Builder is bound to.
func (b *Builder) Model() *model.Model { return b.model }

// Loader returns the option loader feeding the resource pickers.
func (b *Builder) Loader() *resource.Loader { return b.loader }

// Build returns the ordered descriptor list. Every call returns the same
// list; nothing is re-registered or refetched.
func (b *Builder) Build() []Field {
	return b.fields
}

// Render resolves the descriptor list against the current state.
func (b *Builder) Render() []RenderedField {
	return Render(b.fields)
}

// Field looks a descriptor up by bound name. Children of the local parameter
// group are addressed as "localParams.prop" and "localParams.value".
func (b *Builder) Field(name string) (*Field, bool) {
	f, ok := b.byName[name]
	return f, ok
}

// Validate runs the rule of the named field against value. Fields without a
// rule always pass.
func (b *Builder) Validate(name string, trigger validate.Trigger, value any) (validate.Outcome, error) {
	f, ok := b.byName[name]
	if !ok {
		return validate.Outcome{}, &model.FieldError{Field: name, Reason: "unknown field"}
	}
	if f.Validate == nil || f.Validate.Rule == nil {
		return validate.OK(), nil
	}
	return f.Validate.Rule(trigger, value), nil
}

// ValidateParam validates the prop of the local parameter at index against
// the live list.
func (b *Builder) ValidateParam(index int, trigger validate.Trigger) (validate.Outcome, error) {
	params := b.model.LocalParams()
	if index < 0 || index >= len(params) {
		return validate.Outcome{}, fmt.Errorf("local parameter %d out of range (%d entries)", index, len(params))
	}
	return b.prop(trigger, params[index].Prop), nil
}

// LabelKeys lists every translation key the descriptors use.
func LabelKeys() []string {
	return append([]string(nil), labelKeys...)
}

const keyPrefix = "project.node."

var labelKeys = []string{
	keyPrefix + "program_type",
	keyPrefix + "spark_version",
	keyPrefix + "main_class",
	keyPrefix + "main_class_tips",
	keyPrefix + "main_package",
	keyPrefix + "main_package_tips",
	keyPrefix + "deploy_mode",
	keyPrefix + "app_name",
	keyPrefix + "app_name_tips",
	keyPrefix + "driver_cores",
	keyPrefix + "driver_cores_tips",
	keyPrefix + "driver_memory",
	keyPrefix + "driver_memory_tips",
	keyPrefix + "executor_number",
	keyPrefix + "executor_number_tips",
	keyPrefix + "executor_memory",
	keyPrefix + "executor_memory_tips",
	keyPrefix + "executor_cores",
	keyPrefix + "executor_cores_tips",
	keyPrefix + "main_arguments",
	keyPrefix + "main_arguments_tips",
	keyPrefix + "option_parameters",
	keyPrefix + "option_parameters_tips",
	keyPrefix + "resources",
	keyPrefix + "resources_tips",
	keyPrefix + "custom_parameters",
	keyPrefix + "prop_tips",
	keyPrefix + "prop_repeat",
	keyPrefix + "value_tips",
	keyPrefix + "positive_integer_tips",
}

func (b *Builder) t(key string) string {
	return b.tr.Translate(keyPrefix + key)
}

func (b *Builder) build() []Field {
	c := b.catalog
	full := reactive.Static(c.Layout.FullRow)
	half := reactive.Static(c.Layout.HalfRow)
	minCores := c.Limits.MinCores
	always := reactive.Static(true)
	interpreted := func() bool { return c.IsInterpreted(b.model.ProgramType()) }
	resources := b.loader.Options()

	required := func(msg string) *Validation {
		return &Validation{Triggers: validate.DefaultTriggers, Required: always, Rule: validate.Required(msg)}
	}
	memory := func(label, tips string) *Validation {
		return &Validation{
			Triggers: validate.DefaultTriggers,
			Required: always,
			Rule:     validate.PositiveInteger(b.t(tips), b.t(label)+b.t("positive_integer_tips")),
		}
	}
	artifact := func(msg string) *Validation {
		return &Validation{
			Triggers: validate.DefaultTriggers,
			Required: artifactRequiredSignal(c, b.model),
			Rule:     validate.RequiredUnless(interpreted, msg),
		}
	}

	b.prop = validate.UniqueProp(b.model, b.t("prop_tips"), b.t("prop_repeat"))
	paramColumn := reactive.Static(c.Layout.ParamColumn)

	return []Field{
		{
			Kind:    KindSelect,
			Name:    model.FieldProgramType,
			Label:   b.t("program_type"),
			Span:    half,
			Options: reactive.Static(catalog.OptionNodes(c.ProgramTypes)),
		},
		{
			Kind:    KindSelect,
			Name:    model.FieldSparkVersion,
			Label:   b.t("spark_version"),
			Span:    half,
			Options: reactive.Static(catalog.OptionNodes(c.SparkVersions)),
		},
		{
			Kind:     KindInput,
			Name:     model.FieldMainClass,
			Label:    b.t("main_class"),
			Span:     mainClassSpanSignal(c, b.model),
			Props:    Props{Placeholder: b.t("main_class_tips")},
			Validate: artifact(b.t("main_class_tips")),
		},
		{
			Kind:  KindTreeSelect,
			Name:  model.FieldMainJar,
			Label: b.t("main_package"),
			Span:  full,
			Props: Props{
				Placeholder:   b.t("main_package_tips"),
				Cascade:       true,
				ShowPath:      true,
				CheckStrategy: "child",
				KeyField:      "value",
				LabelField:    "full_name",
			},
			Options:  resources,
			Validate: artifact(b.t("main_package_tips")),
		},
		{
			Kind:    KindRadio,
			Name:    model.FieldDeployMode,
			Label:   b.t("deploy_mode"),
			Span:    full,
			Options: reactive.Static(catalog.OptionNodes(c.DeployModes)),
		},
		{
			Kind:  KindInput,
			Name:  model.FieldAppName,
			Label: b.t("app_name"),
			Span:  full,
			Props: Props{Placeholder: b.t("app_name_tips")},
		},
		{
			Kind:     KindInputNumber,
			Name:     model.FieldDriverCores,
			Label:    b.t("driver_cores"),
			Span:     half,
			Props:    Props{Placeholder: b.t("driver_cores_tips"), Min: &minCores},
			Validate: required(b.t("driver_cores_tips")),
		},
		{
			Kind:     KindInput,
			Name:     model.FieldDriverMemory,
			Label:    b.t("driver_memory"),
			Span:     half,
			Props:    Props{Placeholder: b.t("driver_memory_tips")},
			Validate: memory("driver_memory", "driver_memory_tips"),
		},
		{
			Kind:     KindInputNumber,
			Name:     model.FieldNumExecutors,
			Label:    b.t("executor_number"),
			Span:     half,
			Props:    Props{Placeholder: b.t("executor_number_tips"), Min: &minCores},
			Validate: required(b.t("executor_number_tips")),
		},
		{
			Kind:     KindInput,
			Name:     model.FieldExecutorMemory,
			Label:    b.t("executor_memory"),
			Span:     half,
			Props:    Props{Placeholder: b.t("executor_memory_tips")},
			Validate: memory("executor_memory", "executor_memory_tips"),
		},
		{
			Kind:     KindInputNumber,
			Name:     model.FieldExecutorCores,
			Label:    b.t("executor_cores"),
			Span:     half,
			Props:    Props{Placeholder: b.t("executor_cores_tips"), Min: &minCores},
			Validate: required(b.t("executor_cores_tips")),
		},
		{
			Kind:  KindInput,
			Name:  model.FieldMainArgs,
			Label: b.t("main_arguments"),
			Span:  full,
			Props: Props{Placeholder: b.t("main_arguments_tips"), Type: "textarea"},
		},
		{
			Kind:  KindInput,
			Name:  model.FieldOthers,
			Label: b.t("option_parameters"),
			Span:  full,
			Props: Props{Placeholder: b.t("option_parameters_tips"), Type: "textarea"},
		},
		{
			Kind:  KindTreeSelect,
			Name:  model.FieldResourceList,
			Label: b.t("resources"),
			Span:  full,
			Props: Props{
				Placeholder: b.t("resources_tips"),
				Multiple:    true,
				Checkable:   true,
				Cascade:     true,
				ShowPath:    true,
				KeyField:    "value",
				LabelField:  "label",
			},
			Options: resources,
		},
		{
			Kind:  KindCustomParameters,
			Name:  model.FieldLocalParams,
			Label: b.t("custom_parameters"),
			Span:  full,
			Children: []Field{
				{
					Kind:  KindInput,
					Name:  ParamProp,
					Span:  paramColumn,
					Props: Props{Placeholder: b.t("prop_tips"), MaxLength: c.Limits.ParamMaxLength},
					Validate: &Validation{
						Triggers: validate.DefaultTriggers,
						Required: always,
						Rule:     b.prop,
					},
				},
				{
					Kind:  KindInput,
					Name:  ParamValue,
					Span:  paramColumn,
					Props: Props{Placeholder: b.t("value_tips"), MaxLength: c.Limits.ParamMaxLength},
				},
			},
		},
	}
}
