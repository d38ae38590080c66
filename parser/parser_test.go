package parser

import (
	"strings"
	"testing"

	"github.com/localzet/ZConf/value"
)

func parseOK(t *testing.T, src string) *value.TableValue {
	t.Helper()
	table, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return table
}

func parseErr(t *testing.T, src string) error {
	t.Helper()
	_, _, err := Parse(src)
	if err == nil {
		t.Fatalf("Parse(%q): expected error, got none", src)
	}
	return err
}

func TestParseScalarTypes(t *testing.T) {
	table := parseOK(t, `
name = "ZConf"
count = 42
ratio = 3.14
enabled = true
nothing = null
created = 1979-05-27T07:32:00Z
`)
	if got := table.Get("name").Str; got != "ZConf" {
		t.Errorf("name = %q", got)
	}
	if got := table.Get("count").Int; got != 42 {
		t.Errorf("count = %d", got)
	}
	if got := table.Get("ratio").Float; got != 3.14 {
		t.Errorf("ratio = %v", got)
	}
	if got := table.Get("enabled").Bool; got != true {
		t.Errorf("enabled = %v", got)
	}
	if got := table.Get("nothing").Kind; got != value.Null {
		t.Errorf("nothing kind = %s, want null", got)
	}
	if got := table.Get("created").Kind; got != value.Datetime {
		t.Errorf("created kind = %s, want datetime", got)
	}
}

func TestParseUnderscoresInNumbers(t *testing.T) {
	table := parseOK(t, "big = 1_000_000\nsmall = 1_0.2_5")
	if got := table.Get("big").Int; got != 1000000 {
		t.Errorf("big = %d", got)
	}
	if got := table.Get("small").Float; got != 10.25 {
		t.Errorf("small = %v", got)
	}
}

func TestParseRejectsLeadingZero(t *testing.T) {
	err := parseErr(t, "x = 007")
	if !strings.Contains(err.Error(), "leading zero") {
		t.Errorf("error = %v, want mention of leading zero", err)
	}
}

func TestParseRejectsDanglingUnderscore(t *testing.T) {
	parseErr(t, "x = 1_")
	parseErr(t, "x = _1")
}

func TestParseBasicStringEscapes(t *testing.T) {
	table := parseOK(t, `s = "line1\nline2\ttabbed"`)
	if got, want := table.Get("s").Str, "line1\nline2\ttabbed"; got != want {
		t.Errorf("s = %q, want %q", got, want)
	}
}

func TestParseLiteralString(t *testing.T) {
	table := parseOK(t, `path = 'C:\Users\nobody'`)
	if got, want := table.Get("path").Str, `C:\Users\nobody`; got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestParseMultilineBasicString(t *testing.T) {
	table := parseOK(t, "s = \"\"\"\nhello\nworld\"\"\"")
	if got, want := table.Get("s").Str, "hello\nworld"; got != want {
		t.Errorf("s = %q, want %q", got, want)
	}
}

func TestParseMultilineBasicStringLineContinuation(t *testing.T) {
	table := parseOK(t, "s = \"\"\"hello \\\n     world\"\"\"")
	if got, want := table.Get("s").Str, "hello world"; got != want {
		t.Errorf("s = %q, want %q", got, want)
	}
}

func TestParseQuotedKey(t *testing.T) {
	table := parseOK(t, `"key with spaces" = 1`)
	if got := table.Get("key with spaces").Int; got != 1 {
		t.Errorf("value = %d", got)
	}
}

func TestParseArrayHomogeneous(t *testing.T) {
	table := parseOK(t, "nums = [1, 2, 3]")
	arr := table.Get("nums")
	if arr.Kind != value.Array || len(arr.Elems) != 3 {
		t.Fatalf("nums = %+v", arr)
	}
	if got := arr.Elems[2].Int; got != 3 {
		t.Errorf("nums[2] = %d", got)
	}
}

func TestParseArrayMixedTypeRejected(t *testing.T) {
	parseErr(t, `nums = [1, "two"]`)
}

func TestParseArrayOfArrays(t *testing.T) {
	table := parseOK(t, "matrix = [[1, 2], [3, 4]]")
	arr := table.Get("matrix")
	if len(arr.Elems) != 2 {
		t.Fatalf("matrix = %+v", arr)
	}
	if got := arr.Elems[0].Elems[1].Int; got != 2 {
		t.Errorf("matrix[0][1] = %d", got)
	}
}

func TestParseArrayWithComments(t *testing.T) {
	table := parseOK(t, "nums = [\n  1, # one\n  2, # two\n]")
	arr := table.Get("nums")
	if len(arr.Elems) != 2 {
		t.Fatalf("nums = %+v", arr)
	}
}

func TestParseInlineTable(t *testing.T) {
	table := parseOK(t, `point = { x = 1, y = 2 }`)
	point := table.Get("point")
	if point.Kind != value.Table {
		t.Fatalf("point = %+v", point)
	}
	if got := point.TableVal.Get("x").Int; got != 1 {
		t.Errorf("point.x = %d", got)
	}
	if got := point.TableVal.Get("y").Int; got != 2 {
		t.Errorf("point.y = %d", got)
	}
}

func TestParseTableHeader(t *testing.T) {
	table := parseOK(t, "[server]\nhost = \"localhost\"\nport = 80\n")
	server := table.Get("server")
	if server.Kind != value.Table {
		t.Fatalf("server = %+v", server)
	}
	if got := server.TableVal.Get("host").Str; got != "localhost" {
		t.Errorf("server.host = %q", got)
	}
}

func TestParseNestedTableHeaders(t *testing.T) {
	table := parseOK(t, "[a]\nx = 1\n[a.b]\ny = 2\n")
	a := table.Get("a")
	if got := a.TableVal.Get("x").Int; got != 1 {
		t.Errorf("a.x = %d", got)
	}
	b := a.TableVal.Get("b")
	if got := b.TableVal.Get("y").Int; got != 2 {
		t.Errorf("a.b.y = %d", got)
	}
}

func TestParseArrayOfTablesNested(t *testing.T) {
	src := `
[[fruit]]
  name = "apple"

  [[fruit.variety]]
    name = "red delicious"

  [[fruit.variety]]
    name = "granny smith"

[[fruit]]
  name = "banana"

  [[fruit.variety]]
    name = "plantain"
`
	table := parseOK(t, src)
	fruit := table.Get("fruit")
	if len(fruit.Elems) != 2 {
		t.Fatalf("len(fruit) = %d, want 2", len(fruit.Elems))
	}
	apple := fruit.Elems[0].TableVal
	if got := apple.Get("name").Str; got != "apple" {
		t.Errorf("fruit[0].name = %q", got)
	}
	appleVariety := apple.Get("variety")
	if len(appleVariety.Elems) != 2 {
		t.Fatalf("len(fruit[0].variety) = %d, want 2", len(appleVariety.Elems))
	}
	if got := appleVariety.Elems[1].TableVal.Get("name").Str; got != "granny smith" {
		t.Errorf("fruit[0].variety[1].name = %q", got)
	}
	banana := fruit.Elems[1].TableVal
	bananaVariety := banana.Get("variety")
	if len(bananaVariety.Elems) != 1 {
		t.Fatalf("len(fruit[1].variety) = %d, want 1", len(bananaVariety.Elems))
	}
	if got := bananaVariety.Elems[0].TableVal.Get("name").Str; got != "plantain" {
		t.Errorf("fruit[1].variety[0].name = %q", got)
	}
}

func TestParseDuplicateKeyRejected(t *testing.T) {
	parseErr(t, "a = 1\na = 2\n")
}

func TestParseTableRedefinitionRejected(t *testing.T) {
	parseErr(t, "[a]\nx = 1\n[a]\ny = 2\n")
}

func TestParseTableConflictsWithArrayOfTables(t *testing.T) {
	parseErr(t, "[[a]]\nx = 1\n[a]\ny = 2\n")
}

func TestParseImplicitArrayParentRejectsArrayOfTables(t *testing.T) {
	parseErr(t, "[[a.b]]\nx = 1\n[[a]]\ny = 2\n")
}

func TestParseRejectsTwoAssignmentsOnOneLine(t *testing.T) {
	parseErr(t, "a = 1 b = 2\n")
}

func TestParseRejectsTrailingContentAfterTableHeader(t *testing.T) {
	parseErr(t, "[a] x = 1\n")
}

func TestParseRejectsTrailingContentAfterArrayOfTablesHeader(t *testing.T) {
	parseErr(t, "[[a]] x = 1\n")
}

func TestParseDuplicateKeyErrorLine(t *testing.T) {
	err := parseErr(t, "dup = 1\ndup = 2\n")
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want mention of line 2", err)
	}
}

func TestParseStrictModeRejectsNull(t *testing.T) {
	_, _, err := Parse("x = null", WithStrictTOML())
	if err == nil {
		t.Fatal("expected error for null in strict mode")
	}
}

func TestParseComment(t *testing.T) {
	table := parseOK(t, "# a comment\nx = 1 # trailing\n")
	if got := table.Get("x").Int; got != 1 {
		t.Errorf("x = %d", got)
	}
}
