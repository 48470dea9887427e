package expr

import (
	"encoding/json"
	"fmt"
)

// Wire form: every node is an object with a "type" discriminator.
//
//	{"type":"literal","value":150000}
//	{"type":"var","key":"income"}
//	{"type":"compare","op":"lt","left":{...},"right":{...}}
//	{"type":"membership","item":{...},"list":[{...},{...}]}
//	{"type":"logical","op":"and","operands":[{...},{...}]}
type envelope struct {
	Type     string            `json:"type"`
	Value    json.RawMessage   `json:"value"`
	Key      string            `json:"key"`
	Op       string            `json:"op"`
	Left     json.RawMessage   `json:"left"`
	Right    json.RawMessage   `json:"right"`
	Item     json.RawMessage   `json:"item"`
	List     []json.RawMessage `json:"list"`
	Operands []json.RawMessage `json:"operands"`
}

// Parse decodes the authored JSON form of a rule expression into its AST.
// Any syntax or shape defect is an error; the caller decides whether that
// fails one rule or the whole evaluation.
func Parse(raw []byte) (Node, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid expression JSON: %w", err)
	}
	return parseEnvelope(&env)
}

func parseEnvelope(env *envelope) (Node, error) {
	switch env.Type {
	case "literal":
		return parseLiteral(env.Value)
	case "var":
		if env.Key == "" {
			return nil, fmt.Errorf("var node requires a key")
		}
		return Var{Key: env.Key}, nil
	case "compare":
		return parseCompare(env)
	case "membership":
		return parseMembership(env)
	case "logical":
		return parseLogical(env)
	case "":
		return nil, fmt.Errorf("expression node is missing a type")
	default:
		return nil, fmt.Errorf("unknown expression node type %q", env.Type)
	}
}

func parseLiteral(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 {
		// Absent value means an explicit null literal.
		return Literal{Value: nil}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid literal value: %w", err)
	}
	switch v.(type) {
	case nil, bool, float64, string:
		return Literal{Value: v}, nil
	default:
		return nil, fmt.Errorf("literal value must be a scalar")
	}
}

func parseCompare(env *envelope) (Node, error) {
	op := CompareOp(env.Op)
	if !op.IsValid() {
		return nil, fmt.Errorf("unknown comparison operator %q", env.Op)
	}
	if len(env.Left) == 0 || len(env.Right) == 0 {
		return nil, fmt.Errorf("compare node requires left and right operands")
	}
	left, err := Parse(env.Left)
	if err != nil {
		return nil, err
	}
	right, err := Parse(env.Right)
	if err != nil {
		return nil, err
	}
	return Compare{Op: op, Left: left, Right: right}, nil
}

func parseMembership(env *envelope) (Node, error) {
	if len(env.Item) == 0 {
		return nil, fmt.Errorf("membership node requires an item")
	}
	item, err := Parse(env.Item)
	if err != nil {
		return nil, err
	}
	if len(env.List) == 0 {
		return nil, fmt.Errorf("membership node requires a non-empty list")
	}
	list := make([]Node, 0, len(env.List))
	for _, raw := range env.List {
		n, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return Membership{Item: item, List: list}, nil
}

func parseLogical(env *envelope) (Node, error) {
	op := LogicalOp(env.Op)
	if !op.IsValid() {
		return nil, fmt.Errorf("unknown logical operator %q", env.Op)
	}
	if op == OpNot && len(env.Operands) != 1 {
		return nil, fmt.Errorf("not requires exactly one operand, got %d", len(env.Operands))
	}
	if op != OpNot && len(env.Operands) == 0 {
		return nil, fmt.Errorf("%s requires at least one operand", op)
	}
	operands := make([]Node, 0, len(env.Operands))
	for _, raw := range env.Operands {
		n, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		operands = append(operands, n)
	}
	return Logical{Op: op, Operands: operands}, nil
}
