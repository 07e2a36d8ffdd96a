package tools

// Name identifies one tool of the closed set exposed to the model.
type Name string

const (
	RetrieveDocuments    Name = "retrieve_documents"
	FredChart            Name = "fred_chart"
	FredRecentData       Name = "fred_recent_data"
	FredReleaseSchedule  Name = "fred_series_release_schedule"
	FredReleaseStructure Name = "fred_release_structure"
	FredSearchSeries     Name = "fred_search_series"
	FredCorrelation      Name = "fred_series_correlation"
	FraserSearchTitles   Name = "fraser_search_fomc_titles"
	FraserHybridSearch   Name = "fraser_hybrid_search"
	FomcLatestDecision   Name = "fomc_latest_decision"
)

// All lists the tool set in the order it is presented to the model.
var All = []Name{
	RetrieveDocuments,
	FredChart,
	FredRecentData,
	FredReleaseSchedule,
	FredReleaseStructure,
	FredSearchSeries,
	FredCorrelation,
	FraserSearchTitles,
	FraserHybridSearch,
	FomcLatestDecision,
}

// Lookup resolves a model-issued name against the closed set.
func Lookup(s string) (Name, bool) {
	for _, n := range All {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

func (n Name) String() string { return string(n) }
