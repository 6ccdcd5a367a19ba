package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGridCSV(t *testing.T, path, topLeft string) {
	t.Helper()
	var b strings.Builder
	for y := 0; y < 10; y++ {
		cells := make([]string, 10)
		for x := 0; x < 10; x++ {
			if y == 0 && x == 0 {
				cells[x] = topLeft
			} else {
				cells[x] = "mood"
			}
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

func TestLabelGridLoadsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	writeGridCSV(t, path, "enraged")

	svc := NewLabelGridService(path, nil)
	assert.Equal(t, "enraged", svc.LabelAt(0, 0))
	assert.Equal(t, "mood", svc.LabelAt(9, 9))
	assert.Equal(t, "", svc.LabelAt(10, 0))
	assert.Equal(t, "", svc.LabelAt(0, -1))
}

func TestLabelGridReloadsOnModTimeChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	writeGridCSV(t, path, "first")

	svc := NewLabelGridService(path, nil)
	assert.Equal(t, "first", svc.LabelAt(0, 0))

	writeGridCSV(t, path, "second")
	// Filesystems with coarse mtime resolution need a nudge.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Equal(t, "second", svc.LabelAt(0, 0))
}

func TestLabelGridSkipsNumericHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	content := "0,1,2,3,4,5,6,7,8,9\nalert,mood,mood,mood,mood,mood,mood,mood,mood,mood\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	svc := NewLabelGridService(path, nil)
	assert.Equal(t, "alert", svc.LabelAt(0, 0))
}

func TestLabelGridDropsBlankRowsAndPads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.csv")
	content := "a,b\n,,\n\nc,d,e\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	svc := NewLabelGridService(path, nil)
	grid := svc.Current()
	assert.Equal(t, "a", grid[0][0])
	assert.Equal(t, "b", grid[0][1])
	assert.Equal(t, "c", grid[1][0])
	assert.Equal(t, "", grid[0][2], "short rows pad with empties")
	assert.Equal(t, "", grid[2][0])
}

func TestLabelGridMissingFileYieldsEmptyGrid(t *testing.T) {
	svc := NewLabelGridService(filepath.Join(t.TempDir(), "absent.csv"), nil)
	assert.Equal(t, "", svc.LabelAt(4, 4))
}
