package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/taskform/internal/types"
)

type paramList []types.LocalParam

func (p paramList) LocalParams() []types.LocalParam { return p }

func TestRequired(t *testing.T) {
	rule := Required("cores required")

	for _, v := range []any{nil, "", 0, int64(0), float64(0), math.NaN(), false} {
		out := rule(TriggerBlur, v)
		assert.Equal(t, CodeRequired, out.Code, "value %#v", v)
		assert.Equal(t, "cores required", out.Message)
	}
	for _, v := range []any{1, "x", 2.0, true} {
		assert.False(t, rule(TriggerInput, v).Failed(), "value %#v", v)
	}
}

func TestRequiredUnless_ReadsLiveState(t *testing.T) {
	programType := types.ProgramJava
	rule := RequiredUnless(func() bool { return programType == types.ProgramPython }, "main class required")

	assert.Equal(t, CodeRequired, rule(TriggerBlur, "").Code)

	programType = types.ProgramPython
	assert.False(t, rule(TriggerBlur, "").Failed())

	programType = types.ProgramScala
	assert.True(t, rule(TriggerBlur, nil).Failed())
	assert.False(t, rule(TriggerBlur, "org.example.Main").Failed())
}

func TestPositiveInteger(t *testing.T) {
	rule := PositiveInteger("memory required", "memory must be a positive integer")

	tests := []struct {
		value any
		code  Code
	}{
		{"", CodeRequired},
		{nil, CodeRequired},
		{"12.5", CodeFormat},
		{"abc", CodeFormat},
		{"0", CodeFormat},
		{"-4", CodeFormat},
		{"10", ""},
		{"512M", ""},
		{" 2g ", ""},
		{4, ""},
	}
	for _, tt := range tests {
		out := rule(TriggerInput, tt.value)
		assert.Equal(t, tt.code, out.Code, "value %#v", tt.value)
	}

	assert.Equal(t, "memory must be a positive integer", rule(TriggerBlur, "12.5").Message)
	assert.Equal(t, "memory required", rule(TriggerBlur, "").Message)
}

func TestUniqueProp(t *testing.T) {
	params := paramList{{Prop: "a"}, {Prop: "a"}, {Prop: "b"}}
	rule := UniqueProp(params, "prop required", "prop repeated")

	out := rule(TriggerBlur, "a")
	assert.Equal(t, CodeDuplicate, out.Code)
	assert.Equal(t, "prop repeated", out.Message)

	assert.False(t, rule(TriggerBlur, "b").Failed())
	assert.Equal(t, CodeRequired, rule(TriggerBlur, "").Code)
}

func TestUniqueProp_CountsLiveEntries(t *testing.T) {
	params := &mutableParams{list: []types.LocalParam{{Prop: "a"}, {Prop: "b"}}}
	rule := UniqueProp(params, "required", "duplicate")

	assert.False(t, rule(TriggerInput, "a").Failed())
	params.list[1].Prop = "a"
	assert.True(t, rule(TriggerInput, "a").Failed())
}

type mutableParams struct{ list []types.LocalParam }

func (m *mutableParams) LocalParams() []types.LocalParam { return m.list }

func TestOutcome(t *testing.T) {
	assert.NoError(t, OK().Err())
	assert.False(t, OK().Failed())
	out := Fail(CodeFormat, "bad")
	assert.EqualError(t, out.Err(), "bad")
}
