package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/fx/foundation/fx/diag"
)

func loc(col int) diag.Location { return diag.At("t.fx", 0, col) }

// let add(a, b) a + b when a > 0
func sampleDefinition() *FunctionDefinition {
	return &FunctionDefinition{
		Name:   "add",
		Params: []string{"a", "b"},
		Body: &WhenExpression{
			Predicate: &BinaryOperation{
				Rank:  RankGreaterThan,
				Left:  &VariableRef{Name: "a", Loc: loc(26)},
				Right: &NumberLiteral{Int: 0, Loc: loc(30)},
				Loc:   loc(28),
			},
			Result: &BinaryOperation{
				Rank:  RankAdd,
				Left:  &VariableRef{Name: "a", Loc: loc(14)},
				Right: &VariableRef{Name: "b", Loc: loc(18)},
				Loc:   loc(16),
			},
			Loc: loc(20),
		},
		ReturnType: TypeInt,
		Loc:        loc(4),
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"int", &NumberLiteral{Int: 17}, "17"},
		{"float", &NumberLiteral{IsFloat: true, Float: 17}, "17.0"},
		{"fraction", &NumberLiteral{IsFloat: true, Float: 0.25}, "0.25"},
		{"string", &StringLiteral{Value: "hi"}, `"hi"`},
		{"chain", &ChainExpression{Links: []Expr{&NumberLiteral{Int: 1}, &NumberLiteral{Int: 2}}}, "(chain 1, 2)"},
		{"call", &FunctionCall{Name: "f", Args: []Expr{&VariableRef{Name: "x"}}}, "f(x)"},
		{"definition", sampleDefinition(), "(let add(a, b) int (when (> a 0) (+ a b)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestRanks(t *testing.T) {
	for r := RankToPower; r <= RankOr; r++ {
		assert.NotContains(t, r.String(), "rank(")
		assert.Equal(t, r >= BasicRankCount, r.IsCompound(), r.String())
	}
	assert.Equal(t, "rank(16)", Rank(16).String())
}

func TestReturnTypeRoundTrip(t *testing.T) {
	for _, rt := range []ReturnType{TypeInt, TypeFloat, TypeString} {
		parsed, err := ParseReturnType(rt.String())
		require.NoError(t, err)
		assert.Equal(t, rt, parsed)
	}
	_, err := ParseReturnType("bool")
	assert.Error(t, err)
}

type refCollector struct {
	BaseVisitor
	names []string
}

func (c *refCollector) VisitVariableRef(n *VariableRef) interface{} {
	c.names = append(c.names, n.Name)
	return nil
}

func TestBaseVisitorDispatchesToOverrides(t *testing.T) {
	c := &refCollector{}
	c.Self = c

	sampleDefinition().Accept(c)
	assert.Equal(t, []string{"a", "a", "b"}, c.names)
}

func TestInspect(t *testing.T) {
	def := sampleDefinition()
	assert.Equal(t, 8, Count(def))

	var kinds []string
	Inspect(def, func(e Expr) bool {
		if _, ok := e.(*WhenExpression); ok {
			kinds = append(kinds, "when")
			return false
		}
		kinds = append(kinds, "other")
		return true
	})
	assert.Equal(t, []string{"other", "when"}, kinds)
	assert.Equal(t, 0, Count(nil))
}

func TestView(t *testing.T) {
	v := View(sampleDefinition())

	assert.Equal(t, "FunctionDefinition", v["kind"])
	assert.Equal(t, "int", v["return_type"])
	assert.Equal(t, []interface{}{"a", "b"}, v["params"])
	assert.Equal(t, "@t.fx:1:5", v["location"])

	body := v["body"].(map[string]interface{})
	assert.Equal(t, "WhenExpression", body["kind"])
	pred := body["predicate"].(map[string]interface{})
	assert.Equal(t, ">", pred["op"])
	assert.Equal(t, int(RankGreaterThan), pred["rank"])

	num := View(&NumberLiteral{IsFloat: true, Float: 1.5})
	assert.Equal(t, 1.5, num["value"])
	assert.Equal(t, true, num["is_float"])

	all := ViewAll([]Expr{&VariableRef{Name: "x"}})
	require.Len(t, all, 1)
}
