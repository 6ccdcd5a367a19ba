package models

// Quadrant identifies one of the four named regions of the
// pleasantness/energy plane.
type Quadrant string

const (
	QuadrantRed    Quadrant = "red"    // high energy, unpleasant
	QuadrantYellow Quadrant = "yellow" // high energy, pleasant
	QuadrantBlue   Quadrant = "blue"   // low energy, unpleasant
	QuadrantGreen  Quadrant = "green"  // low energy, pleasant
)

// StatsResult is the aggregated view over a set of mood submissions.
// Extremum fields are nil when no submission carried a usable timestamp;
// the average block is nil/zero when no submission was in bounds.
// Heatmap is indexed [y][x].
type StatsResult struct {
	Total          int     `json:"total"`
	MostCommonMood *string `json:"most_common_mood"`

	// Legacy pleasantness extremes, kept under their historical names.
	BestHour   *int `json:"best_hour"`
	WorstHour  *int `json:"worst_hour"`
	BestDay    *int `json:"best_dow"`
	WorstDay   *int `json:"worst_dow"`
	BestMonth  *int `json:"best_month"`
	WorstMonth *int `json:"worst_month"`

	HighestEnergyHour  *int `json:"highest_energy_hour"`
	LowestEnergyHour   *int `json:"lowest_energy_hour"`
	MostPleasantHour   *int `json:"most_pleasant_hour"`
	LeastPleasantHour  *int `json:"least_pleasant_hour"`
	HighestEnergyDay   *int `json:"highest_energy_dow"`
	LowestEnergyDay    *int `json:"lowest_energy_dow"`
	MostPleasantDay    *int `json:"most_pleasant_dow"`
	LeastPleasantDay   *int `json:"least_pleasant_dow"`
	HighestEnergyMonth *int `json:"highest_energy_month"`
	LowestEnergyMonth  *int `json:"lowest_energy_month"`
	MostPleasantMonth  *int `json:"most_pleasant_month"`
	LeastPleasantMonth *int `json:"least_pleasant_month"`

	Heatmap  [GridSize][GridSize]int `json:"heatmap"`
	MaxCount int                     `json:"max_count"`

	AvgX             *float64 `json:"avg_x"`
	AvgY             *float64 `json:"avg_y"`
	AvgTX            *float64 `json:"avg_tx"`
	AvgTY            *float64 `json:"avg_ty"`
	AvgCount         int      `json:"avg_count"`
	AvgQuadrant      *string  `json:"avg_quadrant"`
	AvgQuadrantLabel *string  `json:"avg_quadrant_label"`
	AvgMeaning       *string  `json:"avg_meaning"`
}

// StatsScopeKind selects whose submissions feed the aggregation.
type StatsScopeKind string

const (
	ScopeSelf    StatsScopeKind = "self"
	ScopeStudent StatsScopeKind = "student"
	ScopeGroup   StatsScopeKind = "group"
	ScopeSession StatsScopeKind = "session"
)

// StatsScope names the target of a statistics request.
type StatsScope struct {
	Kind      StatsScopeKind
	StudentID string
	GroupID   int64
	SessionID int64
}
