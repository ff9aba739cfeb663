package indexer

import (
	"math"
	"sort"
	"unicode/utf8"

	"docuchunk/internal/storage"
)

// ChunkStats summarizes the rune lengths of a project's stored chunks.
type ChunkStats struct {
	// Count is the number of chunks.
	Count int `json:"count"`
	// Files is the number of distinct source files.
	Files int `json:"files"`
	// MinLength is the shortest chunk in runes.
	MinLength int `json:"min_length"`
	// MaxLength is the longest chunk in runes.
	MaxLength int `json:"max_length"`
	// MeanLength is rounded to two decimals.
	MeanLength float64 `json:"mean_length"`
	// P95Length is the 95th percentile length.
	P95Length int `json:"p95_length"`
}

// ComputeChunkStats computes length statistics over chunks.
func ComputeChunkStats(chunks []*storage.ChunkRecord) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, 0, len(chunks))
	files := make(map[string]struct{})
	for _, c := range chunks {
		lengths = append(lengths, utf8.RuneCountInString(c.Text))
		files[c.FileID] = struct{}{}
	}

	stats := computeLengthStats(lengths)
	stats.Count = len(chunks)
	stats.Files = len(files)
	return stats
}

// computeLengthStats computes min, max, mean, and p95 from lengths.
func computeLengthStats(lengths []int) ChunkStats {
	if len(lengths) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, n := range lengths {
		sum += n
	}
	mean := float64(sum) / float64(len(lengths))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkStats{
		MinLength:  sorted[0],
		MaxLength:  sorted[len(sorted)-1],
		MeanLength: math.Round(mean*100) / 100,
		P95Length:  sorted[p95Index],
	}
}
