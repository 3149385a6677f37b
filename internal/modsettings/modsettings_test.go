package modsettings

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/leefowlercu/modorder/internal/modmeta"
)

func testMods() []*modmeta.Mod {
	return []*modmeta.Mod{
		GustavDev,
		{UUID: "bbbbbbbb-0000-4000-8000-000000000002", Name: "Beta", Folder: "Beta", Version: modmeta.Version{Major: 1, Minor: 2}},
		{UUID: "aaaaaaaa-0000-4000-8000-000000000001", Name: `Alpha & "Friends" <3`, Folder: "Alpha", MD5: "abc"},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	mods := testMods()

	var buf bytes.Buffer
	if err := Write(&buf, mods); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	settings, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	wantOrder := []string{mods[0].UUID, mods[1].UUID, mods[2].UUID}
	if !slices.Equal(settings.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", settings.Order, wantOrder)
	}
	if len(settings.Modules) != 3 {
		t.Fatalf("Modules = %d, want 3", len(settings.Modules))
	}

	alpha, ok := settings.Module(mods[2].UUID)
	if !ok {
		t.Fatal("Module(alpha) not found")
	}
	if alpha.Name != mods[2].Name || alpha.Folder != "Alpha" || alpha.MD5 != "abc" {
		t.Errorf("alpha = %+v", alpha)
	}

	beta, _ := settings.Module(strings.ToUpper(mods[1].UUID))
	if beta.Version != mods[1].Version {
		t.Errorf("beta version = %s, want %s", beta.Version, mods[1].Version)
	}
}

func TestWriteEscapes(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testMods()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, `Alpha & "Friends" <3`) {
		t.Error("Write() left special characters unescaped")
	}
	if !strings.Contains(out, "Alpha &amp; &#34;Friends&#34; &lt;3") {
		t.Errorf("Write() output missing escaped name:\n%s", out)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	order, err := ReadOrder(&buf)
	if err != nil {
		t.Fatalf("ReadOrder() error = %v", err)
	}
	if len(order) != 0 {
		t.Errorf("ReadOrder() = %v, want empty", order)
	}
}

func TestWriteNilMod(t *testing.T) {
	if err := Write(&bytes.Buffer{}, []*modmeta.Mod{nil}); err == nil {
		t.Error("Write() accepted a nil mod")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", FileName)
	if err := WriteFile(path, testMods()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	order, err := ReadOrder(f)
	if err != nil {
		t.Fatalf("ReadOrder() error = %v", err)
	}
	if len(order) != 3 || order[0] != GustavDev.UUID {
		t.Errorf("ReadOrder() = %v", order)
	}
}

func TestReadIgnoresUnrelatedNodes(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<save>
    <region id="ModuleSettings">
        <node id="root">
            <children>
                <node id="ModOrder">
                    <children>
                        <node id="Module"><attribute id="UUID" type="FixedString" value="one"/></node>
                        <node id="Module"><attribute id="Name" type="LSString" value="no uuid"/></node>
                        <node id="Module"><attribute id="UUID" type="FixedString" value="two"/></node>
                    </children>
                </node>
                <node id="Other">
                    <children>
                        <node id="Module"><attribute id="UUID" type="FixedString" value="ignored"/></node>
                    </children>
                </node>
            </children>
        </node>
    </region>
</save>`

	order, err := ReadOrder(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadOrder() error = %v", err)
	}
	if want := []string{"one", "two"}; !slices.Equal(order, want) {
		t.Errorf("ReadOrder() = %v, want %v", order, want)
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("<save><region>")); !errors.Is(err, ErrMalformedSettings) {
		t.Errorf("Read() error = %v, want ErrMalformedSettings", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteFile(path, testMods()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(s.Order) != 3 || len(s.Modules) != 3 {
		t.Errorf("ReadFile() = %+v", s)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() of missing file error = %v, want os.ErrNotExist", err)
	}
}
