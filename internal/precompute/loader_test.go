package precompute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReferenceFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		want     Reference
		wantErr  bool
		setupErr bool // skip file creation
	}{
		{
			name:    "counts",
			content: "1 1\n2 1\n3 2\n4 8\n",
			want:    Reference{1: 1, 2: 1, 3: 2, 4: 8},
		},
		{
			name:    "comments and blank lines",
			content: "# polycubes\n\n5 29\n   \n6 166\n",
			want:    Reference{5: 29, 6: 166},
		},
		{
			name:    "gaps allowed",
			content: "16 59795121480\n",
			want:    Reference{16: 59795121480},
		},
		{
			name:    "empty file",
			content: "",
			want:    Reference{},
		},
		{
			name:    "missing count",
			content: "3\n",
			wantErr: true,
		},
		{
			name:    "bad order",
			content: "zero 1\n",
			wantErr: true,
		},
		{
			name:    "order below one",
			content: "0 1\n",
			wantErr: true,
		},
		{
			name:    "negative count",
			content: "3 -2\n",
			wantErr: true,
		},
		{
			name:     "non-existent file",
			setupErr: true,
			wantErr:  true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(tmpDir, "ref_"+string(rune('a'+i))+".txt")
			if !tt.setupErr {
				require.NoError(t, os.WriteFile(filename, []byte(tt.content), 0644))
			}

			got, err := LoadReferenceFile(filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.txt")
	stats := []LevelStat{
		{Order: 4, Count: 8},
		{Order: 3, Count: 2},
		{Order: 5, Count: 29},
	}
	require.NoError(t, WriteTextFile(stats, path))

	ref, err := LoadReferenceFile(path)
	require.NoError(t, err)
	assert.Equal(t, Reference{3: 2, 4: 8, 5: 29}, ref)
}
