// Package expr implements the boolean expression trees carried by eligibility
// rules. The tree is a closed tagged union — Literal, Var, Compare,
// Membership, Logical — so evaluation is total and exhaustiveness-checked;
// there is no open expression language and no I/O anywhere in this package.
package expr

// Node is one node of an expression tree. The set of implementations is
// closed; the unexported marker method keeps it that way.
type Node interface {
	node()
}

// CompareOp enumerates the supported comparison operators.
type CompareOp string

const (
	OpEq CompareOp = "eq"
	OpGe CompareOp = "ge"
	OpGt CompareOp = "gt"
	OpLt CompareOp = "lt"
	OpLe CompareOp = "le"
)

// IsValid checks if the operator is one of the supported values.
func (op CompareOp) IsValid() bool {
	switch op {
	case OpEq, OpGe, OpGt, OpLt, OpLe:
		return true
	}
	return false
}

// LogicalOp enumerates the supported logical connectives.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "not"
)

// IsValid checks if the operator is one of the supported values.
func (op LogicalOp) IsValid() bool {
	return op == OpAnd || op == OpOr || op == OpNot
}

// Literal is a constant scalar: bool, float64, string, or nil.
type Literal struct {
	Value any
}

// Var references an answer by key. A key absent from the answer map
// evaluates to nil.
type Var struct {
	Key string
}

// Compare applies a comparison operator to two sub-expressions.
type Compare struct {
	Op    CompareOp
	Left  Node
	Right Node
}

// Membership tests whether Item equals any element of List.
type Membership struct {
	Item Node
	List []Node
}

// Logical combines sub-expressions with and/or/not. And/or short-circuit;
// not takes exactly one operand.
type Logical struct {
	Op       LogicalOp
	Operands []Node
}

func (Literal) node()    {}
func (Var) node()        {}
func (Compare) node()    {}
func (Membership) node() {}
func (Logical) node()    {}

// Variables returns the distinct answer keys referenced by the tree, in
// first-reference order.
func Variables(n Node) []string {
	seen := make(map[string]bool)
	var keys []string
	collectVariables(n, seen, &keys)
	return keys
}

func collectVariables(n Node, seen map[string]bool, keys *[]string) {
	switch v := n.(type) {
	case Var:
		if !seen[v.Key] {
			seen[v.Key] = true
			*keys = append(*keys, v.Key)
		}
	case Compare:
		collectVariables(v.Left, seen, keys)
		collectVariables(v.Right, seen, keys)
	case Membership:
		collectVariables(v.Item, seen, keys)
		for _, item := range v.List {
			collectVariables(item, seen, keys)
		}
	case Logical:
		for _, op := range v.Operands {
			collectVariables(op, seen, keys)
		}
	}
}
