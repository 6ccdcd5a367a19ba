package service

import (
	"encoding/csv"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/classmood/moodgrid-api/internal/models"
)

// LabelGrid is the 10x10 mapping from grid cell to mood name, indexed
// [y][x] from the top (high energy) row down.
type LabelGrid [models.GridSize][models.GridSize]string

// LabelGridService owns the CSV-backed label grid. The file is reparsed
// only when its modification time changes; callers always ask for the
// current grid instead of holding a copy.
type LabelGridService struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	version time.Time
	loaded  bool
	grid    LabelGrid
}

// NewLabelGridService constructs the grid service. The file is read
// lazily on first use.
func NewLabelGridService(path string, logger *zap.Logger) *LabelGridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabelGridService{path: path, logger: logger}
}

// Current returns the grid, reloading when the backing file changed.
// A missing or unreadable file yields an empty grid rather than an error.
func (s *LabelGridService) Current() LabelGrid {
	info, err := os.Stat(s.path)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.loaded {
			s.logger.Warn("label grid file unavailable", zap.String("path", s.path), zap.Error(err))
			s.loaded = true
			s.grid = LabelGrid{}
		}
		return s.grid
	}

	s.mu.RLock()
	if s.loaded && info.ModTime().Equal(s.version) {
		grid := s.grid
		s.mu.RUnlock()
		return grid
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded && info.ModTime().Equal(s.version) {
		return s.grid
	}

	grid, err := loadGridCSV(s.path)
	if err != nil {
		s.logger.Warn("label grid reload failed", zap.String("path", s.path), zap.Error(err))
		return s.grid
	}
	s.grid = grid
	s.version = info.ModTime()
	s.loaded = true
	s.logger.Info("label grid loaded", zap.String("path", s.path), zap.Time("version", s.version))
	return s.grid
}

// LabelAt returns the label for a cell, or "" when out of bounds.
func (s *LabelGridService) LabelAt(x, y int) string {
	if x < 0 || x >= models.GridSize || y < 0 || y >= models.GridSize {
		return ""
	}
	grid := s.Current()
	return grid[y][x]
}

// loadGridCSV parses the label sheet. Blank rows are dropped, an
// all-numeric first row is treated as axis labels and skipped, and the
// result is padded or trimmed to exactly 10x10.
func loadGridCSV(path string) (LabelGrid, error) {
	var grid LabelGrid

	f, err := os.Open(path)
	if err != nil {
		return grid, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return grid, err
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		if rowHasContent(record) {
			rows = append(rows, record)
		}
	}
	if len(rows) == 0 {
		return grid, nil
	}
	if rowAllNumeric(rows[0]) {
		rows = rows[1:]
	}

	for y := 0; y < models.GridSize && y < len(rows); y++ {
		for x := 0; x < models.GridSize && x < len(rows[y]); x++ {
			grid[y][x] = strings.TrimSpace(rows[y][x])
		}
	}
	return grid, nil
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

func rowAllNumeric(row []string) bool {
	for _, cell := range row {
		trimmed := strings.TrimSpace(cell)
		if trimmed == "" {
			return false
		}
		for _, r := range trimmed {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
