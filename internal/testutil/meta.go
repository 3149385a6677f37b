package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// ModDescriptor is the input for MetaLSX. Version fields are raw attribute values so tests
// can inject malformed ones; an empty value omits the attribute.
type ModDescriptor struct {
	UUID         string
	Name         string
	Folder       string
	Author       string
	Description  string
	Version64    string
	Dependencies []DependencyDescriptor
}

// DependencyDescriptor is one Dependencies/ModuleShortDesc node.
type DependencyDescriptor struct {
	UUID      string
	Name      string
	Folder    string
	Version64 string
}

// MetaLSX renders a meta.lsx document in the layout the game toolkit produces.
func MetaLSX(d ModDescriptor) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<save>\n")
	b.WriteString(`    <version major="4" minor="0" revision="9" build="331"/>` + "\n")
	b.WriteString(`    <region id="Config">` + "\n")
	b.WriteString(`        <node id="root">` + "\n")
	b.WriteString("            <children>\n")

	b.WriteString(`                <node id="Dependencies">` + "\n")
	if len(d.Dependencies) > 0 {
		b.WriteString("                    <children>\n")
		for _, dep := range d.Dependencies {
			b.WriteString(`                        <node id="ModuleShortDesc">` + "\n")
			writeAttr(&b, 28, "Folder", "LSString", dep.Folder)
			writeAttr(&b, 28, "MD5", "LSString", "")
			writeAttr(&b, 28, "Name", "LSString", dep.Name)
			if dep.UUID != "" {
				writeAttr(&b, 28, "UUID", "FixedString", dep.UUID)
			}
			if dep.Version64 != "" {
				writeAttr(&b, 28, "Version64", "int64", dep.Version64)
			}
			b.WriteString("                        </node>\n")
		}
		b.WriteString("                    </children>\n")
	}
	b.WriteString("                </node>\n")

	b.WriteString(`                <node id="ModuleInfo">` + "\n")
	writeAttr(&b, 20, "Author", "LSString", d.Author)
	writeAttr(&b, 20, "Description", "LSString", d.Description)
	writeAttr(&b, 20, "Folder", "LSString", d.Folder)
	writeAttr(&b, 20, "MD5", "LSString", "")
	if d.Name != "" {
		writeAttr(&b, 20, "Name", "LSString", d.Name)
	}
	if d.UUID != "" {
		writeAttr(&b, 20, "UUID", "FixedString", d.UUID)
	}
	if d.Version64 != "" {
		writeAttr(&b, 20, "Version64", "int64", d.Version64)
	}
	b.WriteString("                    <children>\n")
	b.WriteString(`                        <node id="PublishVersion">` + "\n")
	writeAttr(&b, 28, "Version64", "int64", "36028797018963968")
	b.WriteString("                        </node>\n")
	b.WriteString("                    </children>\n")
	b.WriteString("                </node>\n")

	b.WriteString("            </children>\n")
	b.WriteString("        </node>\n")
	b.WriteString("    </region>\n")
	b.WriteString("</save>\n")
	return b.Bytes()
}

// ModPackage returns the files of a typical mod package: its descriptor plus one asset.
func ModPackage(d ModDescriptor, compression uint8) []PackageFile {
	folder := d.Folder
	if folder == "" {
		folder = d.Name
	}
	return []PackageFile{
		{Name: fmt.Sprintf("Mods/%s/meta.lsx", folder), Data: MetaLSX(d), Compression: compression},
		{Name: fmt.Sprintf("Public/%s/Stats/Generated/Data/Armor.txt", folder), Data: []byte("new entry \"ARM_Test\"\n"), Compression: compression},
	}
}

func writeAttr(b *bytes.Buffer, indent int, id, typ, value string) {
	for range indent {
		b.WriteByte(' ')
	}
	fmt.Fprintf(b, `<attribute id="%s" type="%s" value="`, id, typ)
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString("\"/>\n")
}
