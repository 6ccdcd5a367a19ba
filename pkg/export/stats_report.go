package export

import (
	"strconv"
	"time"

	"github.com/classmood/moodgrid-api/internal/models"
)

// StatsReport bundles an aggregated result with its presentation context.
type StatsReport struct {
	Title       string
	Scope       string
	GeneratedAt time.Time
	Result      models.StatsResult
}

func formatKey(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// extremumRows lists the twelve extremum fields as label/value pairs in a
// fixed presentation order.
func extremumRows(res models.StatsResult) [][2]string {
	return [][2]string{
		{"Most pleasant hour", formatKey(res.MostPleasantHour)},
		{"Least pleasant hour", formatKey(res.LeastPleasantHour)},
		{"Highest energy hour", formatKey(res.HighestEnergyHour)},
		{"Lowest energy hour", formatKey(res.LowestEnergyHour)},
		{"Most pleasant weekday", formatKey(res.MostPleasantDay)},
		{"Least pleasant weekday", formatKey(res.LeastPleasantDay)},
		{"Highest energy weekday", formatKey(res.HighestEnergyDay)},
		{"Lowest energy weekday", formatKey(res.LowestEnergyDay)},
		{"Most pleasant month", formatKey(res.MostPleasantMonth)},
		{"Least pleasant month", formatKey(res.LeastPleasantMonth)},
		{"Highest energy month", formatKey(res.HighestEnergyMonth)},
		{"Lowest energy month", formatKey(res.LowestEnergyMonth)},
	}
}
