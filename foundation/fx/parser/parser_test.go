package parser

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fxlog "github.com/msto63/fx/foundation/core/log"
	"github.com/msto63/fx/foundation/fx/ast"
	"github.com/msto63/fx/foundation/fx/diag"
	"github.com/msto63/fx/foundation/fx/registry"
)

var ignoreLocations = cmpopts.IgnoreTypes(diag.Location{})

func quietLogger() *fxlog.Logger {
	return fxlog.New().WithOutput(io.Discard)
}

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := New(Options{Logger: quietLogger()})
	require.NoError(t, err)
	return p
}

func parse(t *testing.T, src string) ([]ast.Expr, *Parser) {
	t.Helper()
	p := newParser(t)
	forest, err := p.Parse("t.fx", []byte(src))
	require.NoError(t, err)
	return forest, p
}

func expression(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := newParser(t).ParseExpression(lex(t, src))
	require.NoError(t, err)
	return expr
}

func num(v int64) *ast.NumberLiteral { return &ast.NumberLiteral{Int: v} }
func ref(name string) *ast.VariableRef { return &ast.VariableRef{Name: name} }
func bin(r ast.Rank, l, rr ast.Expr) *ast.BinaryOperation {
	return &ast.BinaryOperation{Rank: r, Left: l, Right: rr}
}

func assertTree(t *testing.T, want, got ast.Expr) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignoreLocations); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroParameterDefinition(t *testing.T) {
	forest, p := parse(t, "let age = 17.0")
	require.Len(t, forest, 1)

	assertTree(t, &ast.FunctionDefinition{
		Name:       "age",
		Body:       &ast.NumberLiteral{IsFloat: true, Float: 17.0},
		ReturnType: ast.TypeFloat,
	}, forest[0])

	rt, ok := p.Registry().Lookup("age")
	require.True(t, ok)
	assert.Equal(t, ast.TypeFloat, rt)
}

func TestDefinitionWithParameters(t *testing.T) {
	forest, p := parse(t, "let add(a, b) a + b")
	require.Len(t, forest, 1)

	assertTree(t, &ast.FunctionDefinition{
		Name:       "add",
		Params:     []string{"a", "b"},
		Body:       bin(ast.RankAdd, ref("a"), ref("b")),
		ReturnType: ast.TypeInt,
	}, forest[0])
	assert.Equal(t, []string{"add"}, p.Registry().Names())
}

func TestChain(t *testing.T) {
	assertTree(t, &ast.ChainExpression{Links: []ast.Expr{num(1), num(2), num(3)}}, expression(t, "1, 2, 3"))

	forest, _ := parse(t, "let xs = 1, 2, 3")
	require.Len(t, forest, 1)
	def := forest[0].(*ast.FunctionDefinition)
	assertTree(t, &ast.ChainExpression{Links: []ast.Expr{num(1), num(2), num(3)}}, def.Body)
}

func TestWhen(t *testing.T) {
	assertTree(t, &ast.WhenExpression{
		Predicate: bin(ast.RankGreaterThan, ref("y"), num(0)),
		Result:    ref("x"),
	}, expression(t, "x when y > 0"))

	assertTree(t, &ast.WhenExpression{
		Predicate: bin(ast.RankEqualEqual, ref("n"), num(1)),
		Result:    bin(ast.RankMultiply, ref("n"), num(2)),
	}, expression(t, "n * 2 when n == 1"))
}

func TestFoldShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"single operator", "a - b", "(- a b)"},
		{"tighter rank first", "a + b * c", "(+ a (* b c))"},
		{"left to right on equal rank", "a + b + c", "(+ (+ a b) c)"},
		{"attach on the left", "a * b + c", "(+ (* a b) c)"},
		{"products around a sum", "a*b + c*d", "(+ b (* (* a b) d))"},
		{"power before product", "a * b ^ c", "(* a (^ b c))"},
		{"compound", "a <= b && c", "(&& (<= a b) c)"},
		{"grouping", "(a + b) * c", "(* (+ a b) c)"},
		{"call arguments", "f(a + 1, g(b))", "f((+ a 1), g(b))"},
		{"empty call", "f()", "f()"},
		{"string", `"hi"`, `"hi"`},
		{"nested chain", "(1, 2)", "(chain 1, 2)"},
		{"chain of operations", "a + 1, b", "(chain (+ a 1), b)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expression(t, tt.src).String())
		})
	}
}

func TestNewlineContinuation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"operator after identifier", "let f(x) x\n+ 1", []string{"(let f(x) int (+ x 1))"}},
		{"operator after grouping", "let f(x) (x)\n* 2", []string{"(let f(x) int (* x 2))"}},
		{"operator after literal ends", "let f(x) 1\n+ 2", []string{"(let f(x) int 1)"}},
		{"operand after operator", "let f(x) x +\n1", []string{"(let f(x) int (+ x 1))"}},
		{"when on next line", "let f(x) x\nwhen x > 0", []string{"(let f(x) int (when (> x 0) x))"}},
		{"let ends expression", "let a = 1\nlet b = 2.0", []string{"(let a() int 1)", "(let b() float 2.0)"}},
		{"floating expressions", "let g(x) x\ng(1)\ng(2)", []string{"(let g(x) int x)", "g(1)", "g(2)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest, _ := parse(t, tt.src)
			got := make([]string, len(forest))
			for i, e := range forest {
				got[i] = e.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatementDispatchSkipsStrayTokens(t *testing.T) {
	forest, _ := parse(t, "let a = 1\n+ 2\nlet b = a")
	require.Len(t, forest, 2)
	assert.Equal(t, "(let a() int 1)", forest[0].String())
	assert.Equal(t, "(let b() int a)", forest[1].String())
}

func TestCallsResolveThroughRegistry(t *testing.T) {
	forest, p := parse(t, "let name = \"fx\"\nlet greet(x) name()\ngreet(1)")
	require.Len(t, forest, 3)

	rt, ok := p.Registry().Lookup("greet")
	require.True(t, ok)
	assert.Equal(t, ast.TypeString, rt)
}

func TestSharedRegistry(t *testing.T) {
	reg := registry.New(registry.Options{Logger: quietLogger()})
	reg.Register("pi", ast.TypeFloat)

	p, err := New(Options{Logger: quietLogger(), Registry: reg})
	require.NoError(t, err)

	forest, err := p.Parse("t.fx", []byte("let tau = pi() * 2.0"))
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, ast.TypeFloat, forest[0].(*ast.FunctionDefinition).ReturnType)
	assert.Same(t, reg, p.Registry())
}

func TestLocations(t *testing.T) {
	forest, _ := parse(t, "let add(a, b) a +\n  b")
	def := forest[0].(*ast.FunctionDefinition)
	assert.Equal(t, diag.At("t.fx", 0, 0), def.Loc)

	op := def.Body.(*ast.BinaryOperation)
	assert.Equal(t, 0, op.Loc.Line)
	assert.Equal(t, 16, op.Loc.Column)
	assert.Equal(t, 1, op.Right.Location().Line)
	assert.Equal(t, 2, op.Right.Location().Column)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   diag.Kind
		line   int
		column int
	}{
		{"unclosed grouping", "let f = (1, 2", diag.KindEOF, 0, 13},
		{"undefined call", "let f(x) g(x)", diag.KindDeclaration, 0, 9},
		{"missing name", "let (a) a", diag.KindIdentifier, 0, 4},
		{"missing name at end", "let", diag.KindEOF, 0, 0},
		{"missing parameters", "let f 1", diag.KindDeclaration, 0, 6},
		{"bad parameter", "let f(a, 1) a", diag.KindIdentifier, 0, 9},
		{"missing comma", "let f(a b) a", diag.KindIdentifier, 0, 8},
		{"trailing comma in parameters", "let f(a,) a", diag.KindIdentifier, 0, 8},
		{"square parameters", "let f[a] a", diag.KindGrouping, 0, 5},
		{"empty body", "let f(a)", diag.KindDeclaration, 0, 5},
		{"body on next line", "let f(x)\nx + 1", diag.KindDeclaration, 1, 0},
		{"unbalanced operator", "let f(a) a +", diag.KindUnbalancedBinaryExpression, 0, 11},
		{"adjacent operators", "let f(a) a + * a", diag.KindUnbalancedBinaryExpression, 0, 13},
		{"unranked symbol", "let f(a) a & a", diag.KindUnknownToken, 0, 11},
		{"unranked compound", "let f(a) a += a", diag.KindUnknownToken, 0, 11},
		{"leading comma", "let f = , 1", diag.KindBadComma, 0, 8},
		{"double comma", "let f = 1, , 2", diag.KindBadComma, 0, 11},
		{"greedy comma pair", "let f = 1,, 2", diag.KindUnknownToken, 0, 9},
		{"trailing comma", "let f = 1, 2,", diag.KindBadComma, 0, 12},
		{"bad call comma", "let f = g(1,)", diag.KindBadComma, 0, 11},
		{"empty grouping", "let f = ()", diag.KindGrouping, 0, 8},
		{"when without result", "let f = when a", diag.KindDeclaration, 0, 8},
		{"when without predicate", "let f(a) a when", diag.KindDeclaration, 0, 11},
		{"two whens", "let f(a) a when a when a", diag.KindDeclaration, 0, 18},
		{"juxtaposed operands", "let f(a) a a", diag.KindDeclaration, 0, 11},
		{"extern statement", "extern f", diag.KindDeclaration, 0, 0},
		{"mixed binary types", "let f = 1 + 2.0", diag.KindUnbalancedBinaryExpression, 0, 12},
		{"mixed chain types", "let f = 1, \"a\"", diag.KindUnbalancedChainExpression, 0, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t)
			forest, err := p.Parse("t.fx", []byte(tt.src))
			assert.Nil(t, forest)
			requireDiag(t, err, tt.kind, tt.line, tt.column)
		})
	}
}

func TestFailedDefinitionIsNotRegistered(t *testing.T) {
	p := newParser(t)
	_, err := p.Parse("t.fx", []byte("let ok = 1\nlet bad = 1 + \"x\""))
	require.Error(t, err)

	_, ok := p.Registry().Lookup("bad")
	assert.False(t, ok)
	_, ok = p.Registry().Lookup("ok")
	assert.True(t, ok)
}

func TestSourceLimit(t *testing.T) {
	p, err := New(Options{Logger: quietLogger(), MaxSourceBytes: 4})
	require.NoError(t, err)

	_, err = p.Parse("t.fx", []byte("let a = 1"))
	require.Error(t, err)
	_, isDiag := diag.AsError(err)
	assert.False(t, isDiag)

	_, err = New(Options{MaxSourceBytes: -1})
	assert.Error(t, err)
}

func TestParseExpressionRejectsLeftovers(t *testing.T) {
	p := newParser(t)
	_, err := p.ParseExpression(lex(t, "a let"))
	requireDiag(t, err, diag.KindDeclaration, 0, 2)

	_, err = p.ParseExpression(nil)
	assert.True(t, diag.IsKind(err, diag.KindDeclaration))
}
