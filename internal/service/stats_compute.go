package service

import (
	"github.com/classmood/moodgrid-api/internal/models"
)

const quadrantMidline = 5

type quadrantText struct {
	label   string
	meaning string
}

var quadrantTexts = map[models.Quadrant]quadrantText{
	models.QuadrantRed:    {"Red", "high energy, unpleasant"},
	models.QuadrantYellow: {"Yellow", "high energy, pleasant"},
	models.QuadrantBlue:   {"Blue", "low energy, unpleasant"},
	models.QuadrantGreen:  {"Green", "low energy, pleasant"},
}

// extremumGroup accumulates values per integer key while remembering
// first-appearance order, so extremum ties resolve to the earliest key
// seen. The tie-break is historical behaviour, kept for parity.
type extremumGroup struct {
	order  []int
	sums   map[int]float64
	counts map[int]int
}

func newExtremumGroup() *extremumGroup {
	return &extremumGroup{
		sums:   make(map[int]float64),
		counts: make(map[int]int),
	}
}

func (g *extremumGroup) add(key int, value float64) {
	if _, seen := g.counts[key]; !seen {
		g.order = append(g.order, key)
	}
	g.sums[key] += value
	g.counts[key]++
}

func (g *extremumGroup) mean(key int) float64 {
	return g.sums[key] / float64(g.counts[key])
}

// maxKey returns the key with the highest mean, or nil for an empty group.
func (g *extremumGroup) maxKey() *int {
	var best *int
	var bestMean float64
	for _, key := range g.order {
		m := g.mean(key)
		if best == nil || m > bestMean {
			k := key
			best = &k
			bestMean = m
		}
	}
	return best
}

// minKey returns the key with the lowest mean, or nil for an empty group.
func (g *extremumGroup) minKey() *int {
	var worst *int
	var worstMean float64
	for _, key := range g.order {
		m := g.mean(key)
		if worst == nil || m < worstMean {
			k := key
			worst = &k
			worstMean = m
		}
	}
	return worst
}

// ComputeStats aggregates a set of mood submissions in a single pass.
// It is pure: no I/O, no mutation of the input, and it never fails.
// Out-of-bounds coordinates still count toward Total but are excluded
// from the heatmap and averages; submissions without a usable timestamp
// are excluded from the time-keyed groupings only.
func ComputeStats(subs []models.MoodSubmission) models.StatsResult {
	res := models.StatsResult{Total: len(subs)}

	var sumX, sumY float64
	var labelOrder []string
	labelCounts := make(map[string]int)

	hourX, hourY := newExtremumGroup(), newExtremumGroup()
	dowX, dowY := newExtremumGroup(), newExtremumGroup()
	monthX, monthY := newExtremumGroup(), newExtremumGroup()

	for _, sub := range subs {
		if sub.InBounds() {
			res.Heatmap[sub.Y][sub.X]++
			sumX += float64(sub.X)
			sumY += float64(sub.Y)
			res.AvgCount++
		}

		if sub.Label != nil && *sub.Label != "" {
			if _, seen := labelCounts[*sub.Label]; !seen {
				labelOrder = append(labelOrder, *sub.Label)
			}
			labelCounts[*sub.Label]++
		}

		if sub.ChosenAt.IsZero() {
			continue
		}
		t := sub.ChosenAt.UTC()
		hour := t.Hour()
		month := int(t.Month())
		dow := (int(t.Weekday()) + 6) % 7 // Monday = 0 .. Sunday = 6

		x, y := float64(sub.X), float64(sub.Y)
		hourX.add(hour, x)
		hourY.add(hour, y)
		dowX.add(dow, x)
		dowY.add(dow, y)
		monthX.add(month, x)
		monthY.add(month, y)
	}

	mostCommon := -1
	for _, label := range labelOrder {
		if labelCounts[label] > mostCommon {
			mostCommon = labelCounts[label]
			l := label
			res.MostCommonMood = &l
		}
	}

	for y := 0; y < models.GridSize; y++ {
		for x := 0; x < models.GridSize; x++ {
			if res.Heatmap[y][x] > res.MaxCount {
				res.MaxCount = res.Heatmap[y][x]
			}
		}
	}

	res.MostPleasantHour = hourX.maxKey()
	res.LeastPleasantHour = hourX.minKey()
	res.MostPleasantDay = dowX.maxKey()
	res.LeastPleasantDay = dowX.minKey()
	res.MostPleasantMonth = monthX.maxKey()
	res.LeastPleasantMonth = monthX.minKey()

	// Smaller y means higher energy, so the energy extremes invert.
	res.HighestEnergyHour = hourY.minKey()
	res.LowestEnergyHour = hourY.maxKey()
	res.HighestEnergyDay = dowY.minKey()
	res.LowestEnergyDay = dowY.maxKey()
	res.HighestEnergyMonth = monthY.minKey()
	res.LowestEnergyMonth = monthY.maxKey()

	// Legacy pleasantness fields, preserved under their original names.
	res.BestHour = hourX.maxKey()
	res.WorstHour = hourX.minKey()
	res.BestDay = dowX.maxKey()
	res.WorstDay = dowX.minKey()
	res.BestMonth = monthX.maxKey()
	res.WorstMonth = monthX.minKey()

	if res.AvgCount > 0 {
		avgX := sumX / float64(res.AvgCount)
		avgY := sumY / float64(res.AvgCount)
		tx := (avgX + 0.5) / float64(models.GridSize)
		ty := (avgY + 0.5) / float64(models.GridSize)

		quadrant := classifyQuadrant(avgX, avgY)
		text := quadrantTexts[quadrant]
		q := string(quadrant)
		label := text.label
		meaning := text.meaning

		res.AvgX = &avgX
		res.AvgY = &avgY
		res.AvgTX = &tx
		res.AvgTY = &ty
		res.AvgQuadrant = &q
		res.AvgQuadrantLabel = &label
		res.AvgMeaning = &meaning
	}

	return res
}

// classifyQuadrant splits the plane at the midline; exactly 5 belongs to
// the pleasant / low-energy side.
func classifyQuadrant(avgX, avgY float64) models.Quadrant {
	left := avgX < quadrantMidline
	top := avgY < quadrantMidline
	switch {
	case top && left:
		return models.QuadrantRed
	case top && !left:
		return models.QuadrantYellow
	case !top && left:
		return models.QuadrantBlue
	default:
		return models.QuadrantGreen
	}
}
