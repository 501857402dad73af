package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/matthewbaird/taskform/internal/types"
)

// LocalParamSource exposes the live local parameter list.
type LocalParamSource interface {
	LocalParams() []types.LocalParam
}

// Required fails with msg when the value is empty.
func Required(msg string) Rule {
	return func(_ Trigger, value any) Outcome {
		if IsEmpty(value) {
			return Fail(CodeRequired, msg)
		}
		return OK()
	}
}

// RequiredUnless behaves like Required, except that it passes whenever
// exempt reports true at validation time.
func RequiredUnless(exempt func() bool, msg string) Rule {
	required := Required(msg)
	return func(trigger Trigger, value any) Outcome {
		if exempt() {
			return OK()
		}
		return required(trigger, value)
	}
}

// leadingNumber matches the numeric prefix of a size such as "512M" or "2.5g".
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// PositiveInteger validates memory sizes: empty values fail with requiredMsg,
// values whose leading number is missing, fractional or not positive fail
// with formatMsg. A trailing unit suffix is allowed.
func PositiveInteger(requiredMsg, formatMsg string) Rule {
	return func(_ Trigger, value any) Outcome {
		if IsEmpty(value) {
			return Fail(CodeRequired, requiredMsg)
		}
		s := strings.TrimSpace(fmt.Sprint(value))
		num := leadingNumber.FindString(s)
		if num == "" {
			return Fail(CodeFormat, formatMsg)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil || f != math.Trunc(f) || f <= 0 {
			return Fail(CodeFormat, formatMsg)
		}
		return OK()
	}
}

// UniqueProp validates a local parameter name: it is required, and it fails
// with duplicateMsg when more than one entry of the live list carries it.
// Every entry sharing the name fails when validated, whichever of them the
// renderer happens to validate.
func UniqueProp(src LocalParamSource, requiredMsg, duplicateMsg string) Rule {
	return func(_ Trigger, value any) Outcome {
		if IsEmpty(value) {
			return Fail(CodeRequired, requiredMsg)
		}
		prop := fmt.Sprint(value)
		same := 0
		for _, p := range src.LocalParams() {
			if p.Prop == prop {
				same++
			}
		}
		if same > 1 {
			return Fail(CodeDuplicate, duplicateMsg)
		}
		return OK()
	}
}

// IsEmpty reports whether v counts as missing: nil, false, the empty string,
// numeric zero, NaN and nil pointers.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case string:
		return x == ""
	case int:
		return x == 0
	case int64:
		return x == 0
	case float64:
		return x == 0 || math.IsNaN(x)
	case json.Number:
		f, err := x.Float64()
		return err != nil || f == 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		return rv.IsNil()
	}
	return false
}
