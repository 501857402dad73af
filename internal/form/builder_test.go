package form

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/i18n"
	"github.com/matthewbaird/taskform/internal/model"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// recordingStore counts queries per program type and fails on demand.
type recordingStore struct {
	inner *resource.MemoryStore

	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		inner: resource.NewMemoryStore(resource.SeedResources()...),
		calls: make(map[string]int),
	}
}

func (s *recordingStore) Query(ctx context.Context, kind, programType string) ([]types.Resource, error) {
	s.mu.Lock()
	s.calls[programType]++
	err := s.fail
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.inner.Query(ctx, kind, programType)
}

func (s *recordingStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func (s *recordingStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func newTestBuilder(t *testing.T, task types.SparkTask, store resource.Store) *Builder {
	t.Helper()
	loader := resource.NewLoader(store, resource.WithResultHandler(func(resource.Result) {}))
	b, err := New(context.Background(), model.New(task), loader,
		WithTranslator(i18n.Default().For(language.English)))
	require.NoError(t, err)
	t.Cleanup(func() {
		loader.Wait()
		b.Close()
	})
	loader.Wait()
	return b
}

func defaultTask() types.SparkTask {
	return catalog.MustLoad().NewTask()
}

func TestBuild_Order(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())

	fields := b.Build()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, model.Fields(), names)

	kinds := map[string]Kind{}
	for _, f := range fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, KindSelect, kinds[model.FieldProgramType])
	assert.Equal(t, KindTreeSelect, kinds[model.FieldMainJar])
	assert.Equal(t, KindRadio, kinds[model.FieldDeployMode])
	assert.Equal(t, KindInputNumber, kinds[model.FieldDriverCores])
	assert.Equal(t, KindCustomParameters, kinds[model.FieldLocalParams])

	// Same list every time.
	assert.Same(t, &fields[0], &b.Build()[0])
}

func TestBuild_Props(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())

	f, ok := b.Field(model.FieldDriverCores)
	require.True(t, ok)
	require.NotNil(t, f.Props.Min)
	assert.Equal(t, 1, *f.Props.Min)
	assert.Equal(t, 12, f.Span.Get())
	assert.Equal(t, "Driver Cores", f.Label)

	jar, _ := b.Field(model.FieldMainJar)
	assert.False(t, jar.Props.Multiple)
	assert.Equal(t, "child", jar.Props.CheckStrategy)
	assert.Equal(t, "full_name", jar.Props.LabelField)

	res, _ := b.Field(model.FieldResourceList)
	assert.True(t, res.Props.Multiple)
	assert.True(t, res.Props.Checkable)

	prop, ok := b.Field("localParams.prop")
	require.True(t, ok)
	assert.Equal(t, 10, prop.Span.Get())
	assert.Equal(t, 256, prop.Props.MaxLength)

	args, _ := b.Field(model.FieldMainArgs)
	assert.Equal(t, "textarea", args.Props.Type)
}

func TestBuilder_SecondBindFails(t *testing.T) {
	m := model.New(defaultTask())
	loader := resource.NewLoader(newRecordingStore())
	b, err := New(context.Background(), m, loader)
	require.NoError(t, err)
	defer loader.Wait()

	_, err = New(context.Background(), m, loader)
	assert.ErrorIs(t, err, model.ErrAlreadyBound)

	b.Close()
	b2, err := New(context.Background(), m, loader)
	require.NoError(t, err)
	b2.Close()
}

func TestBuilder_ProgramTypeResetsArtifact(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())
	m := b.Model()

	writes := []struct {
		field string
		value any
	}{
		{model.FieldMainJar, "3"},
		{model.FieldMainClass, "com.example.Main"},
		{model.FieldAppName, "nightly"},
		{model.FieldProgramType, types.ProgramJava},
		{model.FieldMainJar, "9"},
		{model.FieldMainClass, "com.example.Other"},
		{model.FieldProgramType, types.ProgramPython},
	}
	for _, w := range writes {
		require.NoError(t, m.Set(w.field, w.value))
		if w.field == model.FieldProgramType {
			task := m.Snapshot()
			assert.Empty(t, task.MainJar, "main jar after program type write")
			assert.Empty(t, task.MainClass, "main class after program type write")
		}
	}
	assert.Equal(t, "nightly", m.Snapshot().AppName)

	// Writing the same program type again still resets.
	require.NoError(t, m.Set(model.FieldMainJar, "4"))
	require.NoError(t, m.Set(model.FieldProgramType, types.ProgramPython))
	assert.Empty(t, m.Snapshot().MainJar)
	b.Loader().Wait()
}

func TestBuilder_MainClassSpanFollowsProgramType(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())
	m := b.Model()
	f, _ := b.Field(model.FieldMainClass)

	for _, pt := range []string{types.ProgramJava, types.ProgramPython, types.ProgramScala, types.ProgramPython} {
		require.NoError(t, m.Set(model.FieldProgramType, pt))
		if pt == types.ProgramPython {
			assert.Equal(t, 0, f.Span.Get(), pt)
			assert.False(t, f.Validate.Required.Get(), pt)
		} else {
			assert.Equal(t, 24, f.Span.Get(), pt)
			assert.True(t, f.Validate.Required.Get(), pt)
		}
	}
	b.Loader().Wait()
}

func TestBuilder_QueriesOncePerKey(t *testing.T) {
	store := newRecordingStore()
	b := newTestBuilder(t, defaultTask(), store)
	m := b.Model()

	for i := 0; i < 3; i++ {
		b.Build()
		b.Render()
		require.NoError(t, m.Set(model.FieldProgramType, types.ProgramPython))
		b.Loader().Wait()
		require.NoError(t, m.Set(model.FieldProgramType, types.ProgramScala))
		b.Loader().Wait()
	}
	assert.Equal(t, 1, store.count(types.ProgramScala))
	assert.Equal(t, 1, store.count(types.ProgramPython))
	assert.Equal(t, 0, store.count(types.ProgramJava))
}

func TestBuilder_OptionsFollowSelection(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())
	jar, _ := b.Field(model.FieldMainJar)
	res, _ := b.Field(model.FieldResourceList)

	opts := jar.Options.Get()
	require.Len(t, opts, 2)
	assert.Equal(t, "spark-examples.jar", opts[1].Label)
	assert.Equal(t, opts, res.Options.Get())

	require.NoError(t, b.Model().Set(model.FieldProgramType, types.ProgramPython))
	b.Loader().Wait()
	opts = jar.Options.Get()
	require.Len(t, opts, 1)
	assert.Equal(t, "jobs", opts[0].Label)
	assert.Len(t, opts[0].Children, 2)
}

func TestBuilder_FetchFailureKeepsOptions(t *testing.T) {
	store := newRecordingStore()
	store.setFail(errors.New("resource center down"))
	b := newTestBuilder(t, defaultTask(), store)
	jar, _ := b.Field(model.FieldMainJar)

	// First failure: still empty.
	assert.Empty(t, jar.Options.Get())
	_, cached := b.Loader().Cached(types.ProgramScala)
	assert.False(t, cached)

	store.setFail(nil)
	require.NoError(t, b.Model().Set(model.FieldProgramType, types.ProgramJava))
	b.Loader().Wait()
	before := jar.Options.Get()
	require.NotEmpty(t, before)

	// Later failure: the stale sequence stays.
	store.setFail(errors.New("timeout"))
	require.NoError(t, b.Model().Set(model.FieldProgramType, types.ProgramPython))
	b.Loader().Wait()
	assert.Equal(t, before, jar.Options.Get())
	_, cached = b.Loader().Cached(types.ProgramPython)
	assert.False(t, cached)
}

func TestBuilder_ValidateArtifact(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())

	out, err := b.Validate(model.FieldMainClass, validate.TriggerBlur, "")
	require.NoError(t, err)
	assert.Equal(t, validate.CodeRequired, out.Code)
	assert.Equal(t, "Please enter main class", out.Message)

	out, err = b.Validate(model.FieldMainJar, validate.TriggerInput, nil)
	require.NoError(t, err)
	assert.True(t, out.Failed())

	require.NoError(t, b.Model().Set(model.FieldProgramType, types.ProgramPython))
	out, _ = b.Validate(model.FieldMainClass, validate.TriggerBlur, "")
	assert.False(t, out.Failed())
	out, _ = b.Validate(model.FieldMainJar, validate.TriggerBlur, nil)
	assert.False(t, out.Failed())
	b.Loader().Wait()
}

func TestBuilder_ValidateNumbersAndMemory(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())

	for _, v := range []any{nil, "", 0} {
		out, err := b.Validate(model.FieldExecutorCores, validate.TriggerBlur, v)
		require.NoError(t, err)
		assert.Equal(t, validate.CodeRequired, out.Code, "%#v", v)
	}
	out, _ := b.Validate(model.FieldNumExecutors, validate.TriggerBlur, 200)
	assert.False(t, out.Failed())

	out, _ = b.Validate(model.FieldDriverMemory, validate.TriggerInput, "12.5")
	assert.Equal(t, validate.CodeFormat, out.Code)
	assert.Equal(t, "Driver Memory should be a positive integer", out.Message)

	out, _ = b.Validate(model.FieldExecutorMemory, validate.TriggerInput, "")
	assert.Equal(t, "Please enter Executor memory", out.Message)

	for _, v := range []string{"512M", "10", "2G"} {
		out, _ = b.Validate(model.FieldExecutorMemory, validate.TriggerInput, v)
		assert.False(t, out.Failed(), v)
	}

	// Fields without a rule pass; unknown names are errors.
	out, err := b.Validate(model.FieldAppName, validate.TriggerBlur, "")
	require.NoError(t, err)
	assert.False(t, out.Failed())
	_, err = b.Validate("bogus", validate.TriggerBlur, "")
	var fe *model.FieldError
	assert.ErrorAs(t, err, &fe)
}

func TestBuilder_ValidateParamDuplicates(t *testing.T) {
	task := defaultTask()
	task.LocalParams = []types.LocalParam{
		{Prop: "a", Value: "1"},
		{Prop: "b"},
		{Prop: "a", Value: "2"},
	}
	b := newTestBuilder(t, task, newRecordingStore())

	for _, i := range []int{0, 2} {
		out, err := b.ValidateParam(i, validate.TriggerBlur)
		require.NoError(t, err)
		assert.Equal(t, validate.CodeDuplicate, out.Code, "entry %d", i)
		assert.Equal(t, "prop is repeat", out.Message)
	}
	out, err := b.ValidateParam(1, validate.TriggerBlur)
	require.NoError(t, err)
	assert.False(t, out.Failed())

	_, err = b.ValidateParam(3, validate.TriggerBlur)
	assert.Error(t, err)

	// The rule reads the live list.
	require.NoError(t, b.Model().Set(model.FieldLocalParams, []types.LocalParam{{Prop: "a"}, {Prop: "b"}}))
	out, _ = b.ValidateParam(0, validate.TriggerBlur)
	assert.False(t, out.Failed())

	out, _ = b.Validate("localParams.prop", validate.TriggerInput, "")
	assert.Equal(t, validate.CodeRequired, out.Code)
}

func TestBuilder_Render(t *testing.T) {
	b := newTestBuilder(t, defaultTask(), newRecordingStore())
	require.NoError(t, b.Model().Set(model.FieldProgramType, types.ProgramPython))
	b.Loader().Wait()

	rendered := b.Render()
	require.Len(t, rendered, 15)
	mainClass := rendered[2]
	assert.Equal(t, model.FieldMainClass, mainClass.Field)
	assert.True(t, mainClass.Hidden)
	require.NotNil(t, mainClass.Validate)
	assert.False(t, mainClass.Validate.Required)
	assert.Equal(t, []validate.Trigger{validate.TriggerInput, validate.TriggerBlur}, mainClass.Validate.Trigger)

	raw, err := json.Marshal(rendered)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "tree-select", decoded[3]["type"])
	assert.Equal(t, "Main Package", decoded[3]["name"])
	assert.NotEmpty(t, decoded[3]["options"])
	assert.Len(t, decoded[14]["children"], 2)
}

func TestMainClassSpan(t *testing.T) {
	c := catalog.MustLoad()
	assert.Equal(t, 0, MainClassSpan(c, types.ProgramPython))
	assert.Equal(t, 24, MainClassSpan(c, types.ProgramJava))
	assert.Equal(t, 24, MainClassSpan(c, ""))
	assert.True(t, ArtifactRequired(c, types.ProgramScala))
	assert.False(t, ArtifactRequired(c, types.ProgramPython))
}

func TestLabelKeysTranslated(t *testing.T) {
	assert.Empty(t, i18n.Default().Missing(LabelKeys()))
}
