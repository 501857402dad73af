package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matthewbaird/taskform/internal/types"
)

// Bound field names, matching the JSON keys of types.SparkTask.
const (
	FieldProgramType    = "programType"
	FieldSparkVersion   = "sparkVersion"
	FieldMainClass      = "mainClass"
	FieldMainJar        = "mainJar"
	FieldDeployMode     = "deployMode"
	FieldAppName        = "appName"
	FieldDriverCores    = "driverCores"
	FieldDriverMemory   = "driverMemory"
	FieldNumExecutors   = "numExecutors"
	FieldExecutorMemory = "executorMemory"
	FieldExecutorCores  = "executorCores"
	FieldMainArgs       = "mainArgs"
	FieldOthers         = "others"
	FieldResourceList   = "resourceList"
	FieldLocalParams    = "localParams"
)

// FieldError reports a write the Model refused.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("model: field %q: %s", e.Field, e.Reason)
}

type accessor struct {
	get func(t *types.SparkTask) any
	set func(t *types.SparkTask, v any) error
}

var fieldOrder = []string{
	FieldProgramType, FieldSparkVersion, FieldMainClass, FieldMainJar,
	FieldDeployMode, FieldAppName, FieldDriverCores, FieldDriverMemory,
	FieldNumExecutors, FieldExecutorMemory, FieldExecutorCores,
	FieldMainArgs, FieldOthers, FieldResourceList, FieldLocalParams,
}

var accessors = map[string]accessor{
	FieldProgramType:    stringField(func(t *types.SparkTask) *string { return &t.ProgramType }),
	FieldSparkVersion:   stringField(func(t *types.SparkTask) *string { return &t.SparkVersion }),
	FieldMainClass:      stringField(func(t *types.SparkTask) *string { return &t.MainClass }),
	FieldMainJar:        stringField(func(t *types.SparkTask) *string { return &t.MainJar }),
	FieldDeployMode:     stringField(func(t *types.SparkTask) *string { return &t.DeployMode }),
	FieldAppName:        stringField(func(t *types.SparkTask) *string { return &t.AppName }),
	FieldDriverCores:    intField(func(t *types.SparkTask) *int { return &t.DriverCores }),
	FieldDriverMemory:   stringField(func(t *types.SparkTask) *string { return &t.DriverMemory }),
	FieldNumExecutors:   intField(func(t *types.SparkTask) *int { return &t.NumExecutors }),
	FieldExecutorMemory: stringField(func(t *types.SparkTask) *string { return &t.ExecutorMemory }),
	FieldExecutorCores:  intField(func(t *types.SparkTask) *int { return &t.ExecutorCores }),
	FieldMainArgs:       stringField(func(t *types.SparkTask) *string { return &t.MainArgs }),
	FieldOthers:         stringField(func(t *types.SparkTask) *string { return &t.Others }),
	FieldResourceList: {
		get: func(t *types.SparkTask) any { return append([]string(nil), t.ResourceList...) },
		set: func(t *types.SparkTask, v any) error {
			var list []string
			if err := decodeJSON(v, &list); err != nil {
				return err
			}
			t.ResourceList = list
			return nil
		},
	},
	FieldLocalParams: {
		get: func(t *types.SparkTask) any { return append([]types.LocalParam(nil), t.LocalParams...) },
		set: func(t *types.SparkTask, v any) error {
			var params []types.LocalParam
			if err := decodeJSON(v, &params); err != nil {
				return err
			}
			t.LocalParams = params
			return nil
		},
	},
}

func stringField(ptr func(*types.SparkTask) *string) accessor {
	return accessor{
		get: func(t *types.SparkTask) any { return *ptr(t) },
		set: func(t *types.SparkTask, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			*ptr(t) = s
			return nil
		},
	}
}

func intField(ptr func(*types.SparkTask) *int) accessor {
	return accessor{
		get: func(t *types.SparkTask) any { return *ptr(t) },
		set: func(t *types.SparkTask, v any) error {
			n, err := toInt(v)
			if err != nil {
				return err
			}
			*ptr(t) = n
			return nil
		},
	}
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case int, int64, float64:
		return fmt.Sprint(x), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// toInt accepts the shapes a numeric input produces: Go ints, JSON numbers
// and numeric strings. nil and "" clear the field.
func toInt(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", x)
		}
		return int(n), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// decodeJSON converts loosely typed renderer input (for example []any of
// maps) into a typed slice by a JSON round trip.
func decodeJSON(v any, out any) error {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	return nil
}
