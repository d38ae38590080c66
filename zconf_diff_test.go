package zconf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/localzet/ZConf/value"
)

// toGeneric flattens a value.Value into plain Go data (map, slice,
// string, int64, float64, bool, nil) for comparison against an oracle
// TOML decoder's output. It is test-only scaffolding, not used by the
// library itself: ZCONF is not implemented on top of go-toml/v2 (see
// DESIGN.md), but the TOML subset the two languages share should agree.
func toGeneric(v *value.Value) interface{} {
	switch v.Kind {
	case value.Null:
		return nil
	case value.Bool:
		return v.Bool
	case value.Integer:
		return v.Int
	case value.Float:
		return v.Float
	case value.String:
		return v.Str
	case value.Datetime:
		return v.Time
	case value.Array:
		out := make([]interface{}, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = toGeneric(e)
		}
		return out
	case value.Table:
		return tableToGeneric(v.TableVal)
	default:
		return nil
	}
}

func tableToGeneric(t *value.TableValue) map[string]interface{} {
	out := make(map[string]interface{}, t.Len())
	for _, k := range t.Keys() {
		out[k] = toGeneric(t.Get(k))
	}
	return out
}

// tomlSubsetDocs are plain-TOML documents (no `null`) that both ZCONF
// and github.com/pelletier/go-toml/v2 should parse identically,
// exercising the grammar the two formats share.
var tomlSubsetDocs = []string{
	`title = "ZConf"
[owner]
name = "localzet"
active = true
`,
	`[[products]]
name = "hammer"
sku = 738594937

[[products]]
name = "nail"
sku = 284758393
color = "gray"
`,
	`nums = [1, 2, 3]
matrix = [[1, 2], [3, 4]]
pt = { x = 1, y = 2 }
`,
	`[a.b.c]
x = 1
[a.d]
y = 2
`,
}

func TestDiffAgainstTOMLOracle(t *testing.T) {
	for i, doc := range tomlSubsetDocs {
		var want map[string]interface{}
		if err := toml.Unmarshal([]byte(doc), &want); err != nil {
			t.Fatalf("doc %d: oracle Unmarshal: %v", i, err)
		}

		result, err := ParseString(doc, false)
		if err != nil {
			t.Fatalf("doc %d: ParseString: %v", i, err)
		}
		got := tableToGeneric(result.(*value.TableValue))

		if diff := cmp.Diff(normalizeInts(want), normalizeInts(got)); diff != "" {
			t.Errorf("doc %d mismatch against TOML oracle (-oracle +zconf):\n%s\ndoc:\n%s", i, diff, doc)
		}
	}
}

// normalizeInts recursively converts go-toml's int64 (and any plain
// int) to int64 so the two decoders' outputs compare equal regardless
// of which concrete integer type each happens to produce.
func normalizeInts(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, e := range val {
			out[k] = normalizeInts(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = normalizeInts(e)
		}
		return out
	case int:
		return int64(val)
	case int32:
		return int64(val)
	default:
		return v
	}
}
