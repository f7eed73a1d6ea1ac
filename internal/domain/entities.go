package domain

import (
	"fmt"
	"time"
)

// Section is one of the EAD descriptive sections text is extracted from.
type Section string

const (
	SectionBiogHist      Section = "bioghist"
	SectionScopeContent  Section = "scopecontent"
	SectionDSC           Section = "dsc"
	SectionControlAccess Section = "controlaccess"
)

// Sections lists the extracted sections in extraction order.
var Sections = []Section{
	SectionBiogHist,
	SectionScopeContent,
	SectionDSC,
	SectionControlAccess,
}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// UnmarshalText rejects section names outside the fixed set.
func (s *Section) UnmarshalText(text []byte) error {
	sec, err := ParseSection(string(text))
	if err != nil {
		return err
	}
	*s = sec
	return nil
}

// SectionText is the joined text of one section of one finding aid.
type SectionText struct {
	File    string
	Section Section
	Text    string
}

// Chunk is the unit of embedding and retrieval. Its position in the corpus
// is its position in the vector index.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	File    string  `json:"file"`
	Section Section `json:"section"`
}

// Neighbor is a chunk returned by a nearest-neighbor search.
type Neighbor struct {
	Position int
	Distance float32
	Chunk    Chunk
}

// CollectionMatch groups the retrieved chunks of one finding aid.
type CollectionMatch struct {
	File     string    `json:"file"`
	Sections []Section `json:"sections"`
	Excerpts []string  `json:"excerpts"`
}

// QueryResult is the aggregated, prompt-ready view of a search.
type QueryResult struct {
	Query       string            `json:"query"`
	Collections []CollectionMatch `json:"collections"`
	Context     string            `json:"context"`
	Prompt      string            `json:"prompt"`
}

// IndexManifest ties a vector index to the corpus snapshot it was built from.
type IndexManifest struct {
	SchemaVersion     int       `json:"schema_version"`
	BuildID           string    `json:"build_id"`
	CorpusFingerprint string    `json:"corpus_fingerprint"`
	ChunkCount        int       `json:"chunk_count"`
	Dimension         int       `json:"dimension"`
	Model             string    `json:"model"`
	BuiltAt           time.Time `json:"built_at"`
}

// Matches reports whether the manifest was built from a corpus with the
// given fingerprint and size.
func (m IndexManifest) Matches(fingerprint string, count int) error {
	if m.CorpusFingerprint != fingerprint {
		return fmt.Errorf("%w: index built from corpus %s, current corpus is %s",
			ErrIndexStale, short(m.CorpusFingerprint), short(fingerprint))
	}
	if m.ChunkCount != count {
		return fmt.Errorf("%w: index holds %d entries, corpus holds %d chunks",
			ErrIndexStale, m.ChunkCount, count)
	}
	return nil
}

func short(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
