package config

import (
	"io/ioutil"
	"os"
	"testing"
)

func TestTemplateRoundtrip(t *testing.T) {
	folder, err := ioutil.TempDir("", "ueport-templates")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(folder)
	SetTemplatesFolder(folder)
	defer SetTemplatesFolder("")

	p := Default()
	p.PathMode = SendToDisk
	p.ImportLods = true
	p.LodRegex = `_LOD\d`
	p.DiskMeshFolderPath = "/tmp/meshes"

	if err := SaveTemplate("statics", p); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadTemplate("statics")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.PathMode != SendToDisk || !loaded.ImportLods ||
		loaded.LodRegex != `_LOD\d` || loaded.DiskMeshFolderPath != "/tmp/meshes" {
		t.Errorf("template did not roundtrip: %+v", loaded)
	}

	if err := CreateDefaultTemplate(); err != nil {
		t.Fatal(err)
	}
	names := ListTemplates()
	if len(names) != 2 || names[0] != "default" || names[1] != "statics" {
		t.Errorf("ListTemplates()=%v; expected [default statics]", names)
	}
}

var unrealFolderTests = []struct {
	path string
	ok   bool
}{
	{"/Game/Props", true},
	{"/Game/Props/Chairs/", true},
	{"/Game", true},
	{"", false},
	{"Game/Props", false},
	{"/Content/Props", false},
	{"/Game/Pro ps", false},
	{"/Game/Props.01", false},
}

func TestCheckUnrealFolderPath(t *testing.T) {
	for _, test := range unrealFolderTests {
		err := CheckUnrealFolderPath(test.path)
		if (err == nil) != test.ok {
			t.Errorf("CheckUnrealFolderPath(%q)=%v; expected ok=%v", test.path, err, test.ok)
		}
	}
}

func TestCheckUnrealAssetPathAllowsEmpty(t *testing.T) {
	if err := CheckUnrealAssetPath(""); err != nil {
		t.Errorf("empty asset path should be allowed: %v", err)
	}
	if err := CheckUnrealAssetPath("no-slash"); err == nil {
		t.Errorf("relative asset path should be rejected")
	}
}

func TestCheckDiskFolderPath(t *testing.T) {
	if err := CheckDiskFolderPath(""); err == nil {
		t.Errorf("empty disk folder should be rejected")
	}
	if err := CheckDiskFolderPath(os.TempDir()); err != nil {
		t.Errorf("temp dir should be accepted: %v", err)
	}

	file, err := ioutil.TempFile("", "ueport-notafolder")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(file.Name())
	file.Close()
	if err := CheckDiskFolderPath(file.Name()); err == nil {
		t.Errorf("a file should not pass as an export folder")
	}
}

func TestPathModeHelpers(t *testing.T) {
	p := Default()
	p.PathMode = SendToProject
	if !p.SendsToProject() || p.SendsToDisk() {
		t.Errorf("send_to_project mode misreported")
	}
	p.PathMode = SendToDisk
	if p.SendsToProject() || !p.SendsToDisk() {
		t.Errorf("send_to_disk mode misreported")
	}
	p.PathMode = SendToDiskThenProject
	if !p.SendsToProject() || !p.SendsToDisk() {
		t.Errorf("send_to_disk_then_project mode misreported")
	}
}
