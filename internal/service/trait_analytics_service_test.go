package service

import (
	"math"
	"testing"
	"time"

	"github.com/panjiggm/syntegra-app-sub003/internal/apperr"
	"github.com/panjiggm/syntegra-app-sub003/internal/dto"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(name string, score float64) traitObservation {
	return traitObservation{Name: name, Score: score, Gender: "Unknown", Education: "Unknown", AgeBucket: "Unknown"}
}

func TestSummarize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		s := summarize(nil)
		assert.Equal(t, 0, s.TotalMeasurements)
		assert.Equal(t, 0, s.UniqueTraits)
		assert.Zero(t, s.AverageScore)
		assert.Zero(t, s.DiversityIndex)
	})

	t.Run("single trait has zero diversity", func(t *testing.T) {
		s := summarize([]traitObservation{obs("Openness", 90), obs("Openness", 10)})
		assert.Equal(t, 2, s.TotalMeasurements)
		assert.Equal(t, 1, s.UniqueTraits)
		assert.InDelta(t, 50.0, s.AverageScore, 1e-9)
		assert.InDelta(t, 0.0, s.DiversityIndex, 1e-9)
		require.Len(t, s.MostCommon, 1)
		assert.Equal(t, dto.TraitCount{Name: "Openness", Count: 2}, s.MostCommon[0])
	})

	t.Run("uniform spread over k traits gives 1-1/k", func(t *testing.T) {
		s := summarize([]traitObservation{
			obs("A", 50), obs("B", 50), obs("C", 50), obs("D", 50),
		})
		assert.Equal(t, 4, s.UniqueTraits)
		assert.InDelta(t, 0.75, s.DiversityIndex, 1e-9)
	})

	t.Run("most common is capped at five, ties broken by name", func(t *testing.T) {
		var observations []traitObservation
		for _, name := range []string{"F", "E", "D", "C", "B", "A"} {
			observations = append(observations, obs(name, 50))
		}
		observations = append(observations, obs("F", 50))

		s := summarize(observations)
		require.Len(t, s.MostCommon, 5)
		assert.Equal(t, "F", s.MostCommon[0].Name)
		assert.Equal(t, 2, s.MostCommon[0].Count)
		assert.Equal(t, []string{"A", "B", "C", "D"}, []string{
			s.MostCommon[1].Name, s.MostCommon[2].Name, s.MostCommon[3].Name, s.MostCommon[4].Name,
		})
	})
}

func TestDistributions(t *testing.T) {
	observations := []traitObservation{
		obs("Openness", 10), obs("Openness", 20), obs("Openness", 30), obs("Openness", 40),
	}

	dists := distributions(observations)
	require.Len(t, dists, 1)
	d := dists[0]

	assert.Equal(t, "Openness", d.Name)
	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 25.0, d.Mean, 1e-9)
	assert.InDelta(t, 10.0, d.Min, 1e-9)
	assert.InDelta(t, 40.0, d.Max, 1e-9)
	// Population form: sqrt(mean of squared deviations) = sqrt(125).
	assert.InDelta(t, 11.1803398875, d.StdDev, 1e-6)
	// Nearest-rank, sorted[floor(n*q)].
	assert.InDelta(t, 20.0, d.P25, 1e-9)
	assert.InDelta(t, 30.0, d.P50, 1e-9)
	assert.InDelta(t, 40.0, d.P75, 1e-9)

	require.Len(t, d.Histogram, 5)
	assert.Equal(t, dto.HistogramBucket{Range: "0-20", Count: 2}, d.Histogram[0])
	assert.Equal(t, dto.HistogramBucket{Range: "21-40", Count: 2}, d.Histogram[1])
	assert.Equal(t, 0, d.Histogram[2].Count)
}

func TestDistributions_CapsTraitCount(t *testing.T) {
	var observations []traitObservation
	for i := 0; i < 26; i++ {
		name := string(rune('A' + i))
		observations = append(observations, obs(name, 50))
	}
	// Extra volume pushes Z to the front.
	observations = append(observations, obs("Z", 60), obs("Z", 70))

	dists := distributions(observations)
	require.Len(t, dists, maxDistributionTraits)
	assert.Equal(t, "Z", dists[0].Name)
	assert.Equal(t, 3, dists[0].Count)
}

func resultWithTraits(calculatedAt time.Time, traits ...model.TraitMeasurement) model.Result {
	return model.Result{Traits: traits, CalculatedAt: calculatedAt}
}

func TestCorrelations(t *testing.T) {
	var results []model.Result
	for i := 1; i <= 6; i++ {
		results = append(results, resultWithTraits(baseTime,
			model.TraitMeasurement{Name: "X", Score: float64(i * 10)},
			model.TraitMeasurement{Name: "Y", Score: float64(i * 10)},
			model.TraitMeasurement{Name: "Inverse", Score: float64(70 - i*10)},
			model.TraitMeasurement{Name: "Flat", Score: 50},
		))
	}

	pairs := correlations(results, "")
	require.Len(t, pairs, 3)

	// Flat has no variance, so every pair involving it is skipped. The three
	// surviving pairs are perfectly correlated and tie on |r|.
	for _, p := range pairs {
		assert.NotEqual(t, "Flat", p.TraitA)
		assert.NotEqual(t, "Flat", p.TraitB)
		assert.Equal(t, 6, p.SampleSize)
		assert.InDelta(t, 0.05, p.Significance, 1e-9)
	}
	assert.InDelta(t, 1.0, pairs[0].Coefficient, 1e-9)
	assert.InDelta(t, -1.0, pairs[1].Coefficient, 1e-9)
	assert.InDelta(t, -1.0, pairs[2].Coefficient, 1e-9)
}

func TestCorrelations_RequiresFiveJointObservations(t *testing.T) {
	var results []model.Result
	for i := 1; i <= 4; i++ {
		results = append(results, resultWithTraits(baseTime,
			model.TraitMeasurement{Name: "X", Score: float64(i * 10)},
			model.TraitMeasurement{Name: "Y", Score: float64(i * 10)},
		))
	}
	assert.Empty(t, correlations(results, ""))
}

func TestCorrelations_WeakPairGetsLooseSignificance(t *testing.T) {
	xs := []float64{10, 20, 30, 40, 50, 60}
	ys := []float64{40, 10, 50, 20, 30, 30}

	var results []model.Result
	for i := range xs {
		results = append(results, resultWithTraits(baseTime,
			model.TraitMeasurement{Name: "X", Score: xs[i]},
			model.TraitMeasurement{Name: "Y", Score: ys[i]},
		))
	}

	pairs := correlations(results, "")
	require.Len(t, pairs, 1)
	r, ok := pearson(xs, ys)
	require.True(t, ok)
	require.Less(t, math.Abs(r), 0.3)
	assert.InDelta(t, r, pairs[0].Coefficient, 1e-9)
	assert.InDelta(t, 0.1, pairs[0].Significance, 1e-9)
}

func TestAgeBucket(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	birth := func(yearsAgo int) *time.Time {
		d := now.AddDate(-yearsAgo, 0, -1)
		return &d
	}

	cases := []struct {
		name  string
		birth *time.Time
		want  string
	}{
		{"no birth date", nil, "Unknown"},
		{"teenager", birth(17), "<20"},
		{"early twenties", birth(23), "20-25"},
		{"late twenties", birth(28), "26-30"},
		{"early thirties", birth(33), "31-35"},
		{"late thirties", birth(38), "36-40"},
		{"forties", birth(45), "41-50"},
		{"senior", birth(60), ">50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ageBucket(tc.birth, now))
		})
	}

	// Birthday later this year has not happened yet.
	b := time.Date(2000, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20-25", ageBucket(&b, now))
}

func TestTrend(t *testing.T) {
	from := baseTime
	to := baseTime.Add(30 * 24 * time.Hour)

	results := []model.Result{
		resultWithTraits(from, model.TraitMeasurement{Name: "A", Score: 40}),
		resultWithTraits(from.Add(time.Hour), model.TraitMeasurement{Name: "B", Score: 60}),
		resultWithTraits(from.Add(15*24*time.Hour), model.TraitMeasurement{Name: "A", Score: 80}),
	}

	points := trend(results, from, to)
	require.Len(t, points, maxTrendBuckets)

	assert.Equal(t, from, points[0].BucketStart)
	assert.Equal(t, 2, points[0].ResultCount)
	assert.Equal(t, 2, points[0].UniqueTraits)
	assert.InDelta(t, 50.0, points[0].AverageScore, 1e-9)

	assert.Equal(t, 1, points[15].ResultCount)
	assert.InDelta(t, 80.0, points[15].AverageScore, 1e-9)

	assert.Equal(t, 0, points[1].ResultCount)
	assert.Zero(t, points[1].AverageScore)
}

func TestAnalyze(t *testing.T) {
	store := newMemStore()
	clock := &fakeClock{now: baseTime}
	svc := NewTraitAnalyticsService(&fakeResultRepo{store: store}, clock)

	young := baseTime.AddDate(-24, 0, 0)
	alice := store.addUser(model.User{UUID: "u-1", Name: "Alice", Email: "alice@example.com", Gender: "female", Education: "S1", BirthDate: &young})
	bob := store.addUser(model.User{UUID: "u-2", Name: "Bob", Email: "bob@example.com", Gender: "male"})

	for i := 0; i < 6; i++ {
		userID := alice.ID
		if i%2 == 1 {
			userID = bob.ID
		}
		store.addResult(model.Result{
			UUID:      string(rune('a' + i)),
			AttemptID: uint(100 + i),
			UserID:    userID,
			TestID:    1,
			Traits: model.TraitMeasurements{
				{Name: "Openness", Score: float64(40 + i*5)},
				{Name: "Thinking", Score: float64(90 - i*5)},
			},
			CalculatedAt: baseTime.Add(-time.Duration(i+1) * 24 * time.Hour),
		})
	}
	// Outside the window and traitless rows never surface.
	store.addResult(model.Result{
		UUID: "old", AttemptID: 200, UserID: alice.ID, TestID: 1,
		Traits:       model.TraitMeasurements{{Name: "Openness", Score: 10}},
		CalculatedAt: baseTime.AddDate(0, -2, 0),
	})
	store.addResult(model.Result{
		UUID: "no-traits", AttemptID: 201, UserID: alice.ID, TestID: 1,
		CalculatedAt: baseTime.Add(-24 * time.Hour),
	})

	resp, err := svc.Analyze(dto.TraitAnalyticsQuery{
		Period:              "month",
		IncludeDistribution: true,
		IncludeCorrelation:  true,
		IncludeDemographics: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.ResultCount)
	assert.Equal(t, baseTime, resp.To)
	assert.Equal(t, 12, resp.Summary.TotalMeasurements)
	assert.Equal(t, 2, resp.Summary.UniqueTraits)
	assert.InDelta(t, 0.5, resp.Summary.DiversityIndex, 1e-9)

	require.Len(t, resp.Distributions, 2)
	require.Len(t, resp.Correlations, 1)
	// Openness rises exactly as Thinking falls across the six results.
	assert.InDelta(t, -1.0, resp.Correlations[0].Coefficient, 1e-9)

	require.NotNil(t, resp.Demographics)
	assert.Equal(t, 3, resp.Demographics.ByGender["female"]["Openness"])
	assert.Equal(t, 3, resp.Demographics.ByGender["male"]["Openness"])
	assert.Equal(t, 6, resp.Demographics.ByEducation["Unknown"]["Openness"]+resp.Demographics.ByEducation["S1"]["Openness"])
	assert.Equal(t, 3, resp.Demographics.ByAgeBucket["20-25"]["Thinking"])

	assert.NotEmpty(t, resp.Trend)
}

func TestAnalyze_TraitFilter(t *testing.T) {
	store := newMemStore()
	clock := &fakeClock{now: baseTime}
	svc := NewTraitAnalyticsService(&fakeResultRepo{store: store}, clock)

	user := store.addUser(model.User{UUID: "u-1", Name: "Alice", Email: "alice@example.com"})
	store.addResult(model.Result{
		UUID: "r-1", AttemptID: 1, UserID: user.ID, TestID: 1,
		Traits: model.TraitMeasurements{
			{Name: "Openness", Score: 70},
			{Name: "Thinking", Score: 80},
		},
		CalculatedAt: baseTime.Add(-time.Hour),
	})

	resp, err := svc.Analyze(dto.TraitAnalyticsQuery{TraitName: "Openness"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.TotalMeasurements)
	assert.Equal(t, 1, resp.Summary.UniqueTraits)
	assert.InDelta(t, 70.0, resp.Summary.AverageScore, 1e-9)
}

func TestAnalyze_WindowValidation(t *testing.T) {
	store := newMemStore()
	svc := NewTraitAnalyticsService(&fakeResultRepo{store: store}, &fakeClock{now: baseTime})

	_, err := svc.Analyze(dto.TraitAnalyticsQuery{Period: "fortnight"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Analyze(dto.TraitAnalyticsQuery{From: baseTime, To: baseTime.Add(-time.Hour)})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}
