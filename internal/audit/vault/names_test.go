package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectExt(t *testing.T) {
	tests := []struct {
		name     string
		filetype string
		nameVal  string
		want     string
	}{
		{"filetype substring", "Autodesk Inventor Drawing (.idw)", "Thing", ".idw"},
		{"filename suffix", "", "ABC.PDF", ".pdf"},
		{"filetype beats filename", "Autodesk Inventor Drawing (.idw)", "thing.pdf", ".idw"},
		{"model part", "Autodesk Inventor Part (.ipt)", "", ".ipt"},
		{"assembly", "", "frame.iam", ".iam"},
		{"unknown", "Folder (Folder)", "Some Folder", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectExt(tc.filetype, tc.nameVal))
		})
	}
}

func TestStripPathAndBaseName(t *testing.T) {
	assert.Equal(t, "file.idw", StripPath(`C:\a\b\file.idw`))
	assert.Equal(t, "file.idw", StripPath("  a/b/file.idw  "))
	assert.Equal(t, "thing", BaseName("a/b/Thing.IDW"))
	assert.Equal(t, "noext", BaseName("noext"))
	assert.Equal(t, ".hidden", BaseName(".hidden"), "leading dot is not an extension")
}

func TestExtractDrawingNumber(t *testing.T) {
	assert.Equal(t, "DRG1234", ExtractDrawingNumber("drg1234 bracket.idw"))
	assert.Equal(t, "AB1000", ExtractDrawingNumber("plate AB1000 rev"))
	assert.Equal(t, "", ExtractDrawingNumber("ABCD1234"), "prefix longer than 3 letters")
	assert.Equal(t, "", ExtractDrawingNumber("no number here"))
}

func TestParsePDFName(t *testing.T) {
	t.Run("drawing and part number", func(t *testing.T) {
		info := ParsePDFName("DRG1234 PART56789 REV 2.pdf")
		assert.Equal(t, "DRG1234", info.DrawingNumber)
		assert.Equal(t, "PART56789", info.PartNumber)
	})

	t.Run("revision marker stripped before part scan", func(t *testing.T) {
		info := ParsePDFName("AB1000 XY12345Z REVISION 10.pdf")
		assert.Equal(t, "AB1000", info.DrawingNumber)
		assert.Equal(t, "XY12345Z", info.PartNumber)
	})

	t.Run("part number is the last long run", func(t *testing.T) {
		info := ParsePDFName("FIRST11 SECOND22.pdf")
		assert.Equal(t, "SECOND22", info.PartNumber)
	})

	t.Run("no part number", func(t *testing.T) {
		info := ParsePDFName("short.pdf")
		assert.Equal(t, "", info.PartNumber)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, PDFNameInfo{}, ParsePDFName("   "))
	})
}
