package luagen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonsmith/moonsmith/internal/ir"
	"github.com/moonsmith/moonsmith/internal/luagen"
	"github.com/moonsmith/moonsmith/internal/pipeline"
	"github.com/moonsmith/moonsmith/internal/testutil"
)

func emit(t *testing.T, src string) string {
	t.Helper()
	doc := testutil.Compile(t, src, pipeline.Options{})
	lua, err := luagen.Emit(doc)
	require.NoError(t, err)
	return lua
}

func TestGoldenForLoop(t *testing.T) {
	lua := emit(t, `
function sum(n) {
  let total = 0;
  for (let i = 0; i < n; i++) {
    total += i;
  }
  return total;
}
`)
	testutil.AssertLuaGolden(t, "for_loop", lua)
}

func TestGoldenDestructuring(t *testing.T) {
	lua := emit(t, `
function pick() {
  const [a, , c] = [1, 2, 3];
  return a + c;
}
`)
	testutil.AssertLuaGolden(t, "destructuring", lua)
}

func TestGoldenSwitchFallthrough(t *testing.T) {
	lua := emit(t, `
function label(code) {
  switch (code) {
  case 1:
    return "one";
  case 2:
  case 3:
    return "few";
  default:
    return "many";
  }
}
`)
	testutil.AssertLuaGolden(t, "switch_fallthrough", lua)
}

func TestGoldenAsyncAwait(t *testing.T) {
	lua := emit(t, `
async function fetchTwice(url) {
  const a = await fetch(url);
  const b = await fetch(url);
  return a + b;
}
`)
	testutil.AssertLuaGolden(t, "async_await", lua)
}

func TestPreludeOnlyWhenNeeded(t *testing.T) {
	plain := emit(t, "let x = 1;")
	assert.NotContains(t, plain, "__async")

	suspended := emit(t, "async function f() { return 1; }")
	assert.Contains(t, suspended, "local function __await(v)")
	assert.Contains(t, suspended, "local function __async(body)")
}

func TestExpressionGrouping(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x = (a + b) * c;", "x = (a + b) * c\n"},
		{"x = a + b * c;", "x = a + b * c\n"},
		{"x = a - b - c;", "x = a - b - c\n"},
		{"x = a - (b - c);", "x = a - (b - c)\n"},
		{"x = a ** b ** c;", "x = a ^ b ^ c\n"},
		{"x = (a ** b) ** c;", "x = (a ^ b) ^ c\n"},
		{"x = a && b || c;", "x = a and b or c\n"},
		{"x = a && (b || c);", "x = a and (b or c)\n"},
		{"x = !(a && b);", "x = not (a and b)\n"},
		{"x = - -y;", "x = - -y\n"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, emit(t, tc.src), "source %q", tc.src)
	}
}

func TestOperatorMapping(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x = a === b;", "x = a == b\n"},
		{"x = a !== b;", "x = a ~= b\n"},
		{"x = a != b;", "x = a ~= b\n"},
		{"x = typeof y;", "x = type(y)\n"},
		{"x = a > 0 ? a : b;", "x = a > 0 and a or b\n"},
		{"x = +y;", "x = y\n"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, emit(t, tc.src), "source %q", tc.src)
	}
}

func TestLiteralsAndTables(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"x = [1, , 3];", "x = {1, nil, 3}\n"},
		{`x = {a: 1, "b c": 2, [k]: 3};`, `x = {a = 1, ["b c"] = 2, [k] = 3}` + "\n"},
		{`x = {end: 1};`, `x = {["end"] = 1}` + "\n"},
		{`x = "a\"b\n";`, `x = "a\"b\n"` + "\n"},
		{"x = null;", "x = nil\n"},
		{"x = 0.125e2;", "x = 0.125e2\n"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, emit(t, tc.src), "source %q", tc.src)
	}
}

func TestMemberAccess(t *testing.T) {
	assert.Equal(t, "x = pt.x + pt[\"y z\"]\n", emit(t, `x = pt.x + pt["y z"];`))
	assert.Equal(t, "x = m[k]\n", emit(t, "x = m[k];"))
}

func TestConstructionEmitsAsCall(t *testing.T) {
	assert.Equal(t, "x = Point(1, 2)\n", emit(t, "x = new Point(1, 2);"))
}

func TestStandaloneExpressionsBindToThrowaway(t *testing.T) {
	assert.Equal(t, "local _ = a + b\n", emit(t, "a + b;"))
	assert.Equal(t, "f(1)\n", emit(t, "f(1);"))
}

func TestThrow(t *testing.T) {
	assert.Equal(t, "error(\"boom\")\n", emit(t, `throw "boom";`))
}

func TestWhileWithContinue(t *testing.T) {
	lua := emit(t, `
while (x > 0) {
  if (x % 2 === 0) { continue; }
  x--;
}
`)
	want := `while x > 0 do
  if x % 2 == 0 then
    goto __continue
  end
  x = x - 1
  ::__continue::
end
`
	assert.Equal(t, want, lua)
}

func TestContinueLabelOmittedWithoutJumps(t *testing.T) {
	lua := emit(t, "while (x > 0) { x--; }")
	assert.NotContains(t, lua, "__continue")
}

func TestDoWhile(t *testing.T) {
	lua := emit(t, "do { x--; } while (x > 0);")
	want := `repeat
  x = x - 1
until not (x > 0)
`
	assert.Equal(t, want, lua)
}

func TestForEachLoops(t *testing.T) {
	lua := emit(t, "for (const k in obj) { visit(k); }")
	want := `for k in pairs(obj) do
  visit(k)
end
`
	assert.Equal(t, want, lua)

	lua = emit(t, "for (v of xs) { use(v); }")
	want = `for _, __it in ipairs(xs) do
  v = __it
  use(v)
end
`
	assert.Equal(t, want, lua)
}

func TestTryCatch(t *testing.T) {
	lua := emit(t, "try { risky(); } catch (e) { handle(e); }")
	want := `local __ok, __err = pcall(function()
  risky()
end)
if not __ok then
  local e = __err
  handle(e)
end
`
	assert.Equal(t, want, lua)
}

func TestRestBinding(t *testing.T) {
	lua := emit(t, "const [first, ...rest] = xs;")
	want := `local __d0 = xs
local first = __d0[1]
local rest = {}
for __i = 2, #__d0 do
  rest[#rest + 1] = __d0[__i]
end
`
	assert.Equal(t, want, lua)
}

func TestDefaultFiresOnlyOnNil(t *testing.T) {
	lua := emit(t, `const {role = "guest"} = u;`)
	want := `local __d0 = u
local role = __d0.role
if role == nil then role = "guest" end
`
	assert.Equal(t, want, lua)
}

func TestNestedPatternTemporaries(t *testing.T) {
	lua := emit(t, "const {user: {id, meta: {role}}} = payload;")
	want := `local __d0 = payload
local __d1 = __d0.user
local id = __d1.id
local __d2 = __d1.meta
local role = __d2.role
`
	assert.Equal(t, want, lua)
}

func TestEmissionIsDeterministic(t *testing.T) {
	src := `
function area(w, h) {
  return w * h;
}
let a = area(3, 4);
`
	doc := testutil.Compile(t, src, pipeline.Options{})
	first, err := luagen.Emit(doc)
	require.NoError(t, err)
	second, err := luagen.Emit(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDanglingReferenceFails(t *testing.T) {
	doc := testutil.Compile(t, "x = a + b;", pipeline.Options{})
	for _, n := range doc.Nodes {
		if n.Kind == ir.KindBinary {
			n.Right = "id_TTTT"
		}
	}
	_, err := luagen.Emit(doc)
	var eerr *luagen.EmissionError
	require.ErrorAs(t, err, &eerr)
}
