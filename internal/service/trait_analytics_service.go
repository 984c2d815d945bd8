package service

import (
	"math"
	"sort"
	"time"

	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"github.com/rs/zerolog/log"
)

// Hard ceilings from the analytics contract. Everything is recomputed fresh
// per request; these caps keep that a fixed single pass.
const (
	maxAnalyticsResults   = 1000
	maxDistributionTraits = 20
	maxCorrelationTraits  = 10
	maxCorrelationPairs   = 10
	minPairObservations   = 5
	maxTrendBuckets       = 30
	topCommonTraits       = 5
)

// TraitAnalyticsService aggregates previously computed trait profiles across
// many results into diversity, distribution, and correlation statistics.
type TraitAnalyticsService interface {
	Analyze(q dto.TraitAnalyticsQuery) (*dto.TraitAnalyticsResponse, error)
}

type traitAnalyticsService struct {
	resultRepo repository.ResultRepository
	clock      Clock
}

func NewTraitAnalyticsService(resultRepo repository.ResultRepository, clock Clock) TraitAnalyticsService {
	return &traitAnalyticsService{resultRepo: resultRepo, clock: clock}
}

// traitObservation is one flattened (trait, score) tuple tagged with the
// owning participant's demographics.
type traitObservation struct {
	Name      string
	Score     float64
	Category  string
	Gender    string
	Education string
	AgeBucket string
	ResultIdx int
}

func (s *traitAnalyticsService) Analyze(q dto.TraitAnalyticsQuery) (*dto.TraitAnalyticsResponse, error) {
	from, to, err := s.resolveWindow(q)
	if err != nil {
		return nil, err
	}

	results, err := s.resultRepo.FindWithTraitsInWindow(from, to, q.TestID, maxAnalyticsResults)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	observations := flattenTraits(results, q.TraitName, now)

	resp := &dto.TraitAnalyticsResponse{
		From:        from,
		To:          to,
		ResultCount: len(results),
		Summary:     summarize(observations),
		Trend:       trend(results, from, to),
	}
	if q.IncludeDistribution {
		resp.Distributions = distributions(observations)
	}
	if q.IncludeCorrelation {
		resp.Correlations = correlations(results, q.TraitName)
	}
	if q.IncludeDemographics {
		resp.Demographics = demographics(observations)
	}

	log.Info().
		Time("from", from).
		Time("to", to).
		Int("results", len(results)).
		Int("observations", len(observations)).
		Msg("Trait analytics computed")
	return resp, nil
}

// resolveWindow turns an explicit range or a named period into [from, to).
// Default is the trailing 30 days.
func (s *traitAnalyticsService) resolveWindow(q dto.TraitAnalyticsQuery) (time.Time, time.Time, error) {
	now := s.clock.Now()

	if q.Period != "" {
		var from time.Time
		switch q.Period {
		case "today":
			from = now.Truncate(24 * time.Hour)
		case "week":
			from = now.AddDate(0, 0, -7)
		case "month":
			from = now.AddDate(0, -1, 0)
		case "quarter":
			from = now.AddDate(0, -3, 0)
		case "year":
			from = now.AddDate(-1, 0, 0)
		default:
			return time.Time{}, time.Time{}, apperr.New(apperr.Validation, "unknown period %q", q.Period)
		}
		return from, now, nil
	}

	from, to := q.From, q.To
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, apperr.New(apperr.Validation, "analytics window start must precede end")
	}
	return from, to, nil
}

// flattenTraits turns stored trait lists into flat observations. Malformed
// entries were already quarantined when the rows were scanned; the Valid
// check here only guards rows written before that boundary existed.
func flattenTraits(results []model.Result, traitName string, now time.Time) []traitObservation {
	var observations []traitObservation
	for i := range results {
		r := &results[i]
		for _, t := range r.Traits {
			if !t.Valid() {
				continue
			}
			if traitName != "" && t.Name != traitName {
				continue
			}
			observations = append(observations, traitObservation{
				Name:      t.Name,
				Score:     t.Score,
				Category:  t.Category,
				Gender:    orUnknown(r.User.Gender),
				Education: orUnknown(r.User.Education),
				AgeBucket: ageBucket(r.User.BirthDate, now),
				ResultIdx: i,
			})
		}
	}
	return observations
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func ageBucket(birthDate *time.Time, now time.Time) string {
	if birthDate == nil {
		return "Unknown"
	}
	age := now.Year() - birthDate.Year()
	if now.YearDay() < birthDate.YearDay() {
		age--
	}
	switch {
	case age < 0:
		return "Unknown"
	case age < 20:
		return "<20"
	case age <= 25:
		return "20-25"
	case age <= 30:
		return "26-30"
	case age <= 35:
		return "31-35"
	case age <= 40:
		return "36-40"
	case age <= 50:
		return "41-50"
	default:
		return ">50"
	}
}

// summarize computes occurrence counts, the mean score, and the Simpson
// diversity index 1 - sum(p_i^2): 0 when one trait dominates, approaching 1
// as traits spread evenly.
func summarize(observations []traitObservation) dto.TraitSummary {
	counts := make(map[string]int)
	scoreSum := 0.0
	for _, o := range observations {
		counts[o.Name]++
		scoreSum += o.Score
	}

	summary := dto.TraitSummary{
		TotalMeasurements: len(observations),
		UniqueTraits:      len(counts),
	}
	if len(observations) == 0 {
		return summary
	}

	summary.AverageScore = scoreSum / float64(len(observations))

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		if i == topCommonTraits {
			break
		}
		summary.MostCommon = append(summary.MostCommon, dto.TraitCount{Name: name, Count: counts[name]})
	}

	n := float64(len(observations))
	sumSquares := 0.0
	for _, c := range counts {
		p := float64(c) / n
		sumSquares += p * p
	}
	summary.DiversityIndex = 1 - sumSquares

	return summary
}

var histogramRanges = []struct {
	Label string
	Upper float64
}{
	{"0-20", 20},
	{"21-40", 40},
	{"41-60", 60},
	{"61-80", 80},
	{"81-100", 100},
}

// distributions reports per-trait stats for the top 20 traits by volume.
// Percentiles are nearest-rank (sorted[floor(n*q)]), not interpolated, and
// the standard deviation is the population form.
func distributions(observations []traitObservation) []dto.TraitDistribution {
	scores := make(map[string][]float64)
	for _, o := range observations {
		scores[o.Name] = append(scores[o.Name], o.Score)
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(scores[names[i]]) != len(scores[names[j]]) {
			return len(scores[names[i]]) > len(scores[names[j]])
		}
		return names[i] < names[j]
	})
	if len(names) > maxDistributionTraits {
		names = names[:maxDistributionTraits]
	}

	out := make([]dto.TraitDistribution, 0, len(names))
	for _, name := range names {
		sorted := append([]float64(nil), scores[name]...)
		sort.Float64s(sorted)
		n := len(sorted)

		sum := 0.0
		for _, v := range sorted {
			sum += v
		}
		mean := sum / float64(n)

		variance := 0.0
		for _, v := range sorted {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(n)

		d := dto.TraitDistribution{
			Name:   name,
			Count:  n,
			Mean:   mean,
			Min:    sorted[0],
			Max:    sorted[n-1],
			StdDev: math.Sqrt(variance),
			P25:    nearestRank(sorted, 0.25),
			P50:    nearestRank(sorted, 0.50),
			P75:    nearestRank(sorted, 0.75),
		}
		for _, r := range histogramRanges {
			d.Histogram = append(d.Histogram, dto.HistogramBucket{Range: r.Label})
		}
		for _, v := range sorted {
			for i, r := range histogramRanges {
				if v <= r.Upper {
					d.Histogram[i].Count++
					break
				}
			}
		}
		out = append(out, d)
	}
	return out
}

func nearestRank(sorted []float64, q float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// correlations computes Pearson's r over the first 10 distinct trait names,
// skipping pairs with fewer than 5 joint observations or no variance, and
// keeps the top 10 pairs by |r|. The significance figure is a coarse
// heuristic flag, not a real p-value.
func correlations(results []model.Result, traitName string) []dto.TraitCorrelation {
	var names []string
	seen := make(map[string]bool)
	perResult := make([]map[string]float64, len(results))
	for i := range results {
		byName := make(map[string]float64)
		for _, t := range results[i].Traits {
			if !t.Valid() {
				continue
			}
			if traitName != "" && t.Name != traitName {
				continue
			}
			if _, ok := byName[t.Name]; !ok {
				byName[t.Name] = t.Score
			}
			if !seen[t.Name] && len(names) < maxCorrelationTraits {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		}
		perResult[i] = byName
	}

	var pairs []dto.TraitCorrelation
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			var xs, ys []float64
			for _, byName := range perResult {
				x, okX := byName[names[i]]
				y, okY := byName[names[j]]
				if okX && okY {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < minPairObservations {
				continue
			}
			r, ok := pearson(xs, ys)
			if !ok {
				continue
			}
			significance := 0.1
			if math.Abs(r) > 0.3 {
				significance = 0.05
			}
			pairs = append(pairs, dto.TraitCorrelation{
				TraitA:       names[i],
				TraitB:       names[j],
				Coefficient:  r,
				SampleSize:   len(xs),
				Significance: significance,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Coefficient) > math.Abs(pairs[j].Coefficient)
	})
	if len(pairs) > maxCorrelationPairs {
		pairs = pairs[:maxCorrelationPairs]
	}
	return pairs
}

// pearson returns the correlation coefficient via the sum-of-products
// formula, or ok=false when either dimension has no variance.
func pearson(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0, false
	}
	return (n*sumXY - sumX*sumY) / denominator, true
}

func demographics(observations []traitObservation) *dto.DemographicBreakdown {
	breakdown := &dto.DemographicBreakdown{
		ByGender:    make(map[string]map[string]int),
		ByEducation: make(map[string]map[string]int),
		ByAgeBucket: make(map[string]map[string]int),
	}
	bump := func(m map[string]map[string]int, key, trait string) {
		if m[key] == nil {
			m[key] = make(map[string]int)
		}
		m[key][trait]++
	}
	for _, o := range observations {
		bump(breakdown.ByGender, o.Gender, o.Name)
		bump(breakdown.ByEducation, o.Education, o.Name)
		bump(breakdown.ByAgeBucket, o.AgeBucket, o.Name)
	}
	return breakdown
}

// trend splits the window into up to 30 equal-width buckets and recomputes
// unique-trait count and average score per bucket.
func trend(results []model.Result, from, to time.Time) []dto.TrendPoint {
	width := to.Sub(from) / maxTrendBuckets
	if width <= 0 {
		width = to.Sub(from)
		if width <= 0 {
			return nil
		}
	}

	points := make([]dto.TrendPoint, 0, maxTrendBuckets)
	for start := from; start.Before(to); start = start.Add(width) {
		end := start.Add(width)
		if end.After(to) {
			end = to
		}

		unique := make(map[string]bool)
		scoreSum := 0.0
		scoreCount := 0
		resultCount := 0
		for i := range results {
			r := &results[i]
			if r.CalculatedAt.Before(start) || !r.CalculatedAt.Before(end) {
				continue
			}
			resultCount++
			for _, t := range r.Traits {
				if !t.Valid() {
					continue
				}
				unique[t.Name] = true
				scoreSum += t.Score
				scoreCount++
			}
		}

		point := dto.TrendPoint{
			BucketStart:  start,
			ResultCount:  resultCount,
			UniqueTraits: len(unique),
		}
		if scoreCount > 0 {
			point.AverageScore = scoreSum / float64(scoreCount)
		}
		points = append(points, point)
		if len(points) == maxTrendBuckets {
			break
		}
	}
	return points
}
