package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTypeFor(t *testing.T) {
	cases := map[string]FileType{
		"resume.pdf":   TypePDF,
		"resume.PDF":   TypePDF,
		"cv.doc":       TypeDocument,
		"cv.docx":      TypeDocument,
		"notes.txt":    TypeText,
		"photo.jpg":    TypeImage,
		"photo.jpeg":   TypeImage,
		"shot.png":     TypeImage,
		"anim.gif":     TypeImage,
		"grades.csv":   TypeSpreadsheet,
		"sheet.xlsx":   TypeSpreadsheet,
		"old.xls":      TypeSpreadsheet,
		"archive.tar":  TypeUnknown,
		"no-extension": TypeUnknown,
	}
	for filename, want := range cases {
		assert.Equal(t, want, FileTypeFor(filename), filename)
	}
}

func TestNormalizeRepairsNilCollections(t *testing.T) {
	var data UserData
	data.Normalize()
	assert.NotNil(t, data.PortfolioLinks)
	assert.NotNil(t, data.Files)
}
