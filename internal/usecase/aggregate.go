package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"eadrag/internal/adapter/chunker"
	"eadrag/internal/domain"
)

//go:embed templates/prompt.tmpl
var promptTemplate string

var promptTmpl = template.Must(template.New("prompt").Parse(promptTemplate))

const (
	defaultExcerptChars = 500
	truncationMarker    = "..."
)

// PromptData fills the prompt template.
type PromptData struct {
	Context string
	Subject string
}

// Aggregator folds retrieved chunks into per-collection blocks and the
// final prompt.
type Aggregator struct {
	excerptChars int
}

func NewAggregator(excerptChars int) *Aggregator {
	if excerptChars <= 0 {
		excerptChars = defaultExcerptChars
	}
	return &Aggregator{excerptChars: excerptChars}
}

// Aggregate groups neighbors by file in order of first appearance. Each
// file keeps its distinct sections and excerpts in first-seen order.
func (a *Aggregator) Aggregate(query string, neighbors []domain.Neighbor) (domain.QueryResult, error) {
	var matches []domain.CollectionMatch
	byFile := make(map[string]int)

	for _, n := range neighbors {
		file := n.Chunk.Metadata.File
		i, ok := byFile[file]
		if !ok {
			i = len(matches)
			byFile[file] = i
			matches = append(matches, domain.CollectionMatch{File: file})
		}
		m := &matches[i]

		if !slices.Contains(m.Sections, n.Chunk.Metadata.Section) {
			m.Sections = append(m.Sections, n.Chunk.Metadata.Section)
		}
		excerpt := a.Excerpt(n.Chunk.Text)
		if excerpt != "" && !slices.Contains(m.Excerpts, excerpt) {
			m.Excerpts = append(m.Excerpts, excerpt)
		}
	}

	contextText := FormatContext(matches)
	prompt, err := BuildPrompt(contextText, query)
	if err != nil {
		return domain.QueryResult{}, err
	}

	return domain.QueryResult{
		Query:       query,
		Collections: matches,
		Context:     contextText,
		Prompt:      prompt,
	}, nil
}

// Excerpt strips the collection label from chunk text and truncates it to
// the excerpt length in characters.
func (a *Aggregator) Excerpt(text string) string {
	text = strings.TrimSpace(chunker.StripLabel(text))
	runes := []rune(text)
	if len(runes) <= a.excerptChars {
		return text
	}
	return strings.TrimRightFunc(string(runes[:a.excerptChars]), unicode.IsSpace) + truncationMarker
}

// FormatContext renders one block per collection:
//
//	file.xml (bioghist, scopecontent):
//	- excerpt
//
// Blocks are separated by a blank line.
func FormatContext(matches []domain.CollectionMatch) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		var b strings.Builder
		names := make([]string, len(m.Sections))
		for i, s := range m.Sections {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "%s (%s):", m.File, strings.Join(names, ", "))
		for _, e := range m.Excerpts {
			b.WriteString("\n- ")
			b.WriteString(e)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Subject returns the query up to its first question mark, or the whole
// query when it has none.
func Subject(query string) string {
	subject, _, _ := strings.Cut(query, "?")
	return subject
}

// BuildPrompt fills the prompt template.
func BuildPrompt(contextText, query string) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, PromptData{Context: contextText, Subject: Subject(query)}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
