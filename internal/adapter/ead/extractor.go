// Package ead extracts descriptive section text from EAD finding aids.
package ead

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"

	"eadrag/internal/domain"
)

// Extractor pulls the text of the fixed EAD sections out of one document.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the finding aid at path and returns one SectionText per
// non-empty section, in domain.Sections order.
func (e *Extractor) Extract(path string) ([]domain.SectionText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return e.ExtractReader(filepath.Base(path), f)
}

// ExtractReader is Extract over an already opened document. file is the
// name recorded in the chunk metadata.
func (e *Extractor) ExtractReader(file string, r io.Reader) ([]domain.SectionText, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	var sections []domain.SectionText
	for _, sec := range domain.Sections {
		text, err := sectionText(doc, sec)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, domain.SectionText{
			File:    file,
			Section: sec,
			Text:    text,
		})
	}

	return sections, nil
}

// sectionText joins every text node under every element named sec, at any
// depth, in document order. A nested sec matches the query once per
// enclosing sec, so each text node is kept only the first time it is seen.
func sectionText(doc *xmlquery.Node, sec domain.Section) (string, error) {
	nodes, err := xmlquery.QueryAll(doc, "//"+string(sec)+"//text()")
	if err != nil {
		return "", fmt.Errorf("query %s: %w", sec, err)
	}

	seen := make(map[*xmlquery.Node]struct{}, len(nodes))
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		parts = append(parts, n.Data)
	}
	return strings.Join(parts, " "), nil
}
