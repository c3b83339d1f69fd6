package naming

import "testing"

const lodPattern = `_LOD\d`

var extractFlagsTests = []struct {
	in          string
	out         string
	insensitive bool
}{
	{`_LOD\d`, `_LOD\d`, false},
	{`(?i)_lod\d`, `_lod\d`, true},
	{`(?m)_LOD\d`, `_LOD\d`, false},
	{`(?i)(?m)_LOD\d`, `_LOD\d`, true},
	{``, ``, false},
}

func TestExtractFlags(t *testing.T) {
	for _, test := range extractFlagsTests {
		out, insensitive := ExtractFlags(test.in)
		if out != test.out || insensitive != test.insensitive {
			t.Errorf("ExtractFlags(%q)=%q,%v; expected %q,%v",
				test.in, out, insensitive, test.out, test.insensitive)
		}
	}
}

var lod0NameTests = []struct {
	name    string
	pattern string
	out     string
}{
	{"Chair_LOD2", lodPattern, "Chair_LOD0"},
	{"Chair_LOD0", lodPattern, "Chair_LOD0"},
	{"Chair", lodPattern, "Chair"},
	{"Chair_lod2", `(?i)_LOD\d`, "Chair_lod0"},
	{"Chair_lod2", lodPattern, "Chair_lod2"},
	{"Chair_LOD2", `_LOD[\d`, "Chair_LOD2"}, // malformed pattern degrades to no match
}

func TestLod0Name(t *testing.T) {
	for _, test := range lod0NameTests {
		if out := Lod0Name(test.name, test.pattern); out != test.out {
			t.Errorf("Lod0Name(%q,%q)=%q; expected %q", test.name, test.pattern, out, test.out)
		}
	}
}

var lodIndexTests = []struct {
	name    string
	pattern string
	out     int
}{
	{"Prop_LOD2", lodPattern, 2},
	{"Prop_LOD0", lodPattern, 0},
	{"Prop", lodPattern, 0},
	{"Prop_lod7", `(?i)_lod\d`, 7},
	{"Prop_LOD3", `_LOD[\d`, 0},
}

func TestLodIndex(t *testing.T) {
	for _, test := range lodIndexTests {
		if out := LodIndex(test.name, test.pattern); out != test.out {
			t.Errorf("LodIndex(%q,%q)=%d; expected %d", test.name, test.pattern, out, test.out)
		}
	}
}

var assetNameTests = []struct {
	name     string
	stripLod bool
	out      string
}{
	{"Chair_LOD1", true, "Chair"},
	{"Chair_LOD1", false, "Chair_LOD1"},
	{"Chair", true, "Chair"},
	{" Chair ", false, "Chair"},
	{"Chair.001", false, "Chair_001"},
	{"My Chair", false, "My_Chair"},
	{"Chair-a+b_c", false, "Chair-a+b_c"},
}

func TestAssetName(t *testing.T) {
	for _, test := range assetNameTests {
		if out := AssetName(test.name, test.stripLod, lodPattern); out != test.out {
			t.Errorf("AssetName(%q,%v)=%q; expected %q", test.name, test.stripLod, out, test.out)
		}
	}
}

func TestAssetNameIdempotent(t *testing.T) {
	for _, name := range []string{"Chair_LOD1", "Chair.001", " My Chair ", "UBX_Chair_01"} {
		once := AssetName(name, true, lodPattern)
		twice := AssetName(once, true, lodPattern)
		if once != twice {
			t.Errorf("AssetName(%q) not idempotent: %q != %q", name, once, twice)
		}
	}
}

var isCollisionOfTests = []struct {
	asset   string
	object  string
	pattern string
	out     bool
}{
	{"Chair", "UBX_Chair", lodPattern, true},
	{"Chair", "UBX_Chair_01", lodPattern, true},
	{"Chair", "UCX_Chair_12", lodPattern, true},
	{"Chair", "UCP_Chair", lodPattern, true},
	{"Chair", "USP_Chair", lodPattern, true},
	{"Chair", " UBX_Chair_01 ", lodPattern, true},
	{"Chair", "UBX_Chair_LOD1", lodPattern, true},
	{"Chair", "UBX_Chair_LOD1_03", lodPattern, true},
	{"Chair", "UBX_Table_01", lodPattern, false},
	{"Chair", "UXX_Chair", lodPattern, false},
	{"Chair", "Chair", lodPattern, false},
	{"Chair", "UBX_Chair_lod1", `(?i)_lod\d`, true},
	{"Chair", "UBX_Chair_lod1", lodPattern, false},
	// malformed lod pattern falls back to the plain form
	{"Chair", "UBX_Chair_01", `_LOD[\d`, true},
	{"Chair", "UBX_Chair_LOD1", `_LOD[\d`, false},
	// regex metacharacters in the asset name must be escaped
	{"Chair+v2", "UBX_Chair+v2", lodPattern, true},
}

func TestIsCollisionOf(t *testing.T) {
	for _, test := range isCollisionOfTests {
		if out := IsCollisionOf(test.asset, test.object, test.pattern); out != test.out {
			t.Errorf("IsCollisionOf(%q,%q,%q)=%v; expected %v",
				test.asset, test.object, test.pattern, out, test.out)
		}
	}
}

func TestIsLodOf(t *testing.T) {
	if !IsLodOf("Chair", "Chair_LOD3", true, lodPattern) {
		t.Errorf("Chair_LOD3 should be a lod of Chair")
	}
	if IsLodOf("Chair", "Table_LOD3", true, lodPattern) {
		t.Errorf("Table_LOD3 should not be a lod of Chair")
	}
	if IsLodOf("Chair", "Chair", true, lodPattern) {
		t.Errorf("Chair has no lod suffix and should not be a lod variant of itself")
	}
	if IsLodOf("Table", "Table", true, `_LOD[\d`) {
		t.Errorf("a malformed pattern should never produce lod variants")
	}
}

func TestAssetNameStripsWholePatternMatch(t *testing.T) {
	// user patterns may carry their own capture groups; the strip
	// still removes the full suffix
	if out := AssetName("Chair_LOD2", true, `_LOD(\d)`); out != "Chair" {
		t.Errorf("AssetName(Chair_LOD2)=%q; expected Chair", out)
	}
	if out := Lod0Name("Chair_LOD2", `_LOD(\d)`); out != "Chair_LOD0" {
		t.Errorf("Lod0Name(Chair_LOD2)=%q; expected Chair_LOD0", out)
	}
	if index := LodIndex("Chair_LOD2", `_LOD(\d)`); index != 2 {
		t.Errorf("LodIndex(Chair_LOD2)=%v; expected 2", index)
	}
}

func TestHasCollisionPrefix(t *testing.T) {
	for name, expected := range map[string]bool{
		"UBX_Chair": true,
		"UCP_a":     true,
		"USP_a":     true,
		"UCX_a":     true,
		"UBX":       false,
		"Chair":     false,
	} {
		if out := HasCollisionPrefix(name); out != expected {
			t.Errorf("HasCollisionPrefix(%q)=%v; expected %v", name, out, expected)
		}
	}
}

func TestNameValidity(t *testing.T) {
	if HasInvalidChars("Chair_01-a+b") {
		t.Errorf("Chair_01-a+b should be a valid name")
	}
	if !HasInvalidChars("Chair 01") {
		t.Errorf("names with spaces should be invalid")
	}
	if !HasInvalidChars("Chair.001") {
		t.Errorf("names with dots should be invalid")
	}
	if !IsReserved("None") || !IsReserved("none") || IsReserved("Chair") {
		t.Errorf("only the literal token none is reserved")
	}
}

func TestAssetID(t *testing.T) {
	a := AssetID("/tmp/ueport/data/StaticMesh/Chair.fbx")
	b := AssetID("/tmp/ueport/data/StaticMesh/Chair.fbx")
	if a != b {
		t.Errorf("AssetID should be stable: %q != %q", a, b)
	}
	if a == AssetID("/tmp/ueport/data/StaticMesh/Table.fbx") {
		t.Errorf("different paths should produce different ids")
	}
}

func TestAssetNameFromFile(t *testing.T) {
	if out := AssetNameFromFile("/tmp/data/Chair.fbx"); out != "Chair" {
		t.Errorf("AssetNameFromFile=%q; expected Chair", out)
	}
}
