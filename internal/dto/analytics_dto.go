package dto

import "time"

// TraitAnalyticsQuery is the parsed analytics request. Either Period or an
// explicit From/To window is supplied; both empty means the trailing 30 days.
type TraitAnalyticsQuery struct {
	Period              string
	From                time.Time
	To                  time.Time
	TestID              *uint
	TraitName           string
	IncludeDistribution bool
	IncludeCorrelation  bool
	IncludeDemographics bool
}

type TraitCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TraitSummary struct {
	TotalMeasurements int          `json:"total_measurements"`
	UniqueTraits      int          `json:"unique_traits"`
	MostCommon        []TraitCount `json:"most_common,omitempty"`
	AverageScore      float64      `json:"average_score"`
	DiversityIndex    float64      `json:"diversity_index"`
}

type HistogramBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type TraitDistribution struct {
	Name      string            `json:"name"`
	Count     int               `json:"count"`
	Mean      float64           `json:"mean"`
	Min       float64           `json:"min"`
	Max       float64           `json:"max"`
	StdDev    float64           `json:"std_dev"`
	P25       float64           `json:"p25"`
	P50       float64           `json:"p50"`
	P75       float64           `json:"p75"`
	Histogram []HistogramBucket `json:"histogram"`
}

type TraitCorrelation struct {
	TraitA       string  `json:"trait_a"`
	TraitB       string  `json:"trait_b"`
	Coefficient  float64 `json:"coefficient"`
	SampleSize   int     `json:"sample_size"`
	Significance float64 `json:"significance"`
}

type DemographicBreakdown struct {
	ByGender    map[string]map[string]int `json:"by_gender"`
	ByEducation map[string]map[string]int `json:"by_education"`
	ByAgeBucket map[string]map[string]int `json:"by_age_bucket"`
}

type TrendPoint struct {
	BucketStart  time.Time `json:"bucket_start"`
	ResultCount  int       `json:"result_count"`
	UniqueTraits int       `json:"unique_traits"`
	AverageScore float64   `json:"average_score"`
}

type TraitAnalyticsResponse struct {
	From          time.Time             `json:"from"`
	To            time.Time             `json:"to"`
	ResultCount   int                   `json:"result_count"`
	Summary       TraitSummary          `json:"summary"`
	Distributions []TraitDistribution   `json:"distributions,omitempty"`
	Correlations  []TraitCorrelation    `json:"correlations,omitempty"`
	Demographics  *DemographicBreakdown `json:"demographics,omitempty"`
	Trend         []TrendPoint          `json:"trend"`
}
