package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"eadrag/internal/domain"
	"eadrag/internal/port"
)

// Search returns the k nearest vectors to query by squared Euclidean
// distance (brute force). Ties are broken by lower position, so results are
// deterministic.
func (s *BoltIndex) Search(ctx context.Context, query []float32, k int) ([]port.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}

	if len(query) != s.manifest.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrVectorDimMismatch, len(query), s.manifest.Dimension)
	}

	hits := make([]port.VectorHit, len(s.vectors))
	for i, vec := range s.vectors {
		hits[i] = port.VectorHit{
			Position: i,
			Distance: squaredL2(query, vec),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// squaredL2 calculates the squared Euclidean distance between two vectors
// of equal length.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector length %d", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}
