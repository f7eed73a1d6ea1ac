package ead

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eadrag/internal/domain"
)

const sampleEAD = `<?xml version="1.0" encoding="UTF-8"?>
<ead><eadheader><eadid>wa-001</eadid></eadheader><archdesc level="collection"><did><unittitle>Volunteer Papers</unittitle></did><bioghist><p>Enlisted 1898.</p><p>Served in Manila.</p></bioghist><scopecontent><p>Letters home.</p></scopecontent><controlaccess><subject>Spanish-American War, 1898</subject></controlaccess></archdesc></ead>`

func TestExtractReader_Sections(t *testing.T) {
	sections, err := NewExtractor().ExtractReader("wa-001.xml", strings.NewReader(sampleEAD))
	require.NoError(t, err)

	require.Len(t, sections, 3)
	assert.Equal(t, domain.SectionBiogHist, sections[0].Section)
	assert.Equal(t, "Enlisted 1898. Served in Manila.", sections[0].Text)
	assert.Equal(t, domain.SectionScopeContent, sections[1].Section)
	assert.Equal(t, "Letters home.", sections[1].Text)
	assert.Equal(t, domain.SectionControlAccess, sections[2].Section)
	assert.Equal(t, "Spanish-American War, 1898", sections[2].Text)

	for _, s := range sections {
		assert.Equal(t, "wa-001.xml", s.File)
	}
}

func TestExtractReader_NoRecognizedSections(t *testing.T) {
	doc := `<ead><archdesc><did><unittitle>Empty</unittitle></did></archdesc></ead>`

	sections, err := NewExtractor().ExtractReader("empty.xml", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestExtractReader_EmptySectionSkipped(t *testing.T) {
	doc := `<ead><archdesc><bioghist></bioghist><dsc><c01><did><unittitle>Box 1</unittitle></did></c01></dsc></archdesc></ead>`

	sections, err := NewExtractor().ExtractReader("x.xml", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, domain.SectionDSC, sections[0].Section)
	assert.Equal(t, "Box 1", sections[0].Text)
}

func TestExtractReader_DuplicateSections(t *testing.T) {
	doc := `<ead><archdesc><controlaccess><subject>War</subject></controlaccess><dsc><c01><controlaccess><persname>Doe, John</persname></controlaccess></c01></dsc></archdesc></ead>`

	sections, err := NewExtractor().ExtractReader("x.xml", strings.NewReader(doc))
	require.NoError(t, err)

	var access string
	for _, s := range sections {
		if s.Section == domain.SectionControlAccess {
			access = s.Text
		}
	}
	assert.Equal(t, "War Doe, John", access)
}

func TestExtractReader_NestedSectionsNotRepeated(t *testing.T) {
	doc := `<ead><archdesc><controlaccess><subject>War</subject><controlaccess><persname>Doe, John</persname><controlaccess><geogname>Manila</geogname></controlaccess></controlaccess><corpname>Army</corpname></controlaccess></archdesc></ead>`

	sections, err := NewExtractor().ExtractReader("x.xml", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, domain.SectionControlAccess, sections[0].Section)
	assert.Equal(t, "War Doe, John Manila Army", sections[0].Text)
}

func TestExtractReader_Namespaced(t *testing.T) {
	doc := `<ead xmlns="urn:isbn:1-931666-22-9"><archdesc><bioghist><p>Namespaced history.</p></bioghist></archdesc></ead>`

	sections, err := NewExtractor().ExtractReader("ns.xml", strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Namespaced history.", sections[0].Text)
}

func TestExtractReader_Malformed(t *testing.T) {
	_, err := NewExtractor().ExtractReader("bad.xml", strings.NewReader(`<ead><bioghist>oops</ead>`))
	assert.Error(t, err)
}

func TestExtract_FileNameIsBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wa-001.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleEAD), 0644))

	sections, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	assert.Equal(t, "wa-001.xml", sections[0].File)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}
