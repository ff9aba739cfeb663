package indexer

import (
	"strings"
	"testing"

	"docuchunk/internal/storage"
)

func TestComputeLengthStats(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    ChunkStats
	}{
		{
			name:    "empty",
			lengths: []int{},
			want:    ChunkStats{},
		},
		{
			name:    "single value",
			lengths: []int{42},
			want:    ChunkStats{MinLength: 42, MaxLength: 42, MeanLength: 42, P95Length: 42},
		},
		{
			name:    "unsorted values",
			lengths: []int{30, 10, 20},
			want:    ChunkStats{MinLength: 10, MaxLength: 30, MeanLength: 20, P95Length: 30},
		},
		{
			name:    "twenty values",
			lengths: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 100},
			want:    ChunkStats{MinLength: 1, MaxLength: 100, MeanLength: 14.5, P95Length: 19},
		},
		{
			name:    "mean rounded",
			lengths: []int{1, 1, 2},
			want:    ChunkStats{MinLength: 1, MaxLength: 2, MeanLength: 1.33, P95Length: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeLengthStats(tt.lengths); got != tt.want {
				t.Errorf("computeLengthStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeChunkStats(t *testing.T) {
	chunks := []*storage.ChunkRecord{
		{FileID: "a.txt", Text: strings.Repeat("x", 100)},
		{FileID: "a.txt", Text: strings.Repeat("x", 60)},
		{FileID: "b.md", Text: "héllo"},
	}

	got := ComputeChunkStats(chunks)

	want := ChunkStats{Count: 3, Files: 2, MinLength: 5, MaxLength: 100, MeanLength: 55, P95Length: 100}
	if got != want {
		t.Errorf("ComputeChunkStats() = %+v, want %+v", got, want)
	}

	if empty := ComputeChunkStats(nil); empty != (ChunkStats{}) {
		t.Errorf("ComputeChunkStats(nil) = %+v, want zero", empty)
	}
}
