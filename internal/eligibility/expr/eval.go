package expr

import (
	"math"
	"strings"
)

// floatEpsilon bounds float comparison: values this close are equal, and a
// numeric this close to zero is falsy.
const floatEpsilon = 1e-9

// Evaluate tests an expression tree against an answer map. Evaluation is
// deterministic and total for parsed trees: a type mismatch in a comparison
// is false, never a panic or error. Non-boolean results pass through Truthy.
func Evaluate(n Node, answers map[string]any) bool {
	return Truthy(evalValue(n, answers))
}

func evalValue(n Node, answers map[string]any) any {
	switch v := n.(type) {
	case Literal:
		return v.Value
	case Var:
		return answers[v.Key]
	case Compare:
		return compare(v.Op, evalValue(v.Left, answers), evalValue(v.Right, answers))
	case Membership:
		item := evalValue(v.Item, answers)
		for _, candidate := range v.List {
			if valuesEqual(item, evalValue(candidate, answers)) {
				return true
			}
		}
		return false
	case Logical:
		return evalLogical(v, answers)
	default:
		return nil
	}
}

func evalLogical(l Logical, answers map[string]any) bool {
	switch l.Op {
	case OpAnd:
		for _, op := range l.Operands {
			if !Evaluate(op, answers) {
				return false
			}
		}
		return true
	case OpOr:
		for _, op := range l.Operands {
			if Evaluate(op, answers) {
				return true
			}
		}
		return false
	case OpNot:
		return !Evaluate(l.Operands[0], answers)
	default:
		return false
	}
}

func compare(op CompareOp, left, right any) bool {
	if op == OpEq {
		return valuesEqual(left, right)
	}

	// Ordering: numerics compare numerically, strings lexically. Anything
	// else (nil, bool, mixed types) does not order and the comparison is
	// false, keeping evaluation total.
	if lf, lok := asFloat(left); lok {
		rf, rok := asFloat(right)
		if !rok {
			return false
		}
		return orderedFloat(op, lf, rf)
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if !lok || !rok {
		return false
	}
	return orderedString(op, ls, rs)
}

func orderedFloat(op CompareOp, l, r float64) bool {
	switch op {
	case OpGe:
		return l > r || math.Abs(l-r) < floatEpsilon
	case OpGt:
		return l > r && math.Abs(l-r) >= floatEpsilon
	case OpLt:
		return l < r && math.Abs(l-r) >= floatEpsilon
	case OpLe:
		return l < r || math.Abs(l-r) < floatEpsilon
	}
	return false
}

func orderedString(op CompareOp, l, r string) bool {
	switch op {
	case OpGe:
		return l >= r
	case OpGt:
		return l > r
	case OpLt:
		return l < r
	case OpLe:
		return l <= r
	}
	return false
}

func valuesEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if lf, ok := asFloat(left); ok {
		if rf, ok := asFloat(right); ok {
			return math.Abs(lf-rf) < floatEpsilon
		}
		return false
	}
	return left == right
}

// asFloat widens any numeric answer to float64. JSON decoding yields float64,
// but callers constructing answer maps in Go commonly use int.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Truthy coerces an evaluated value to a boolean by the engine's fixed table:
// booleans as-is; numeric zero (within epsilon) false, other numerics true;
// empty or whitespace-only strings false, other strings true; nil false;
// lists true when non-empty.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	default:
		if f, ok := asFloat(v); ok {
			return math.Abs(f) >= floatEpsilon
		}
		// Any other structured value with content counts as true.
		return true
	}
}
