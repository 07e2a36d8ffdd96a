package tools

import (
	"github.com/cloudwego/eino/schema"
)

func stringParam(desc string, required bool) *schema.ParameterInfo {
	return &schema.ParameterInfo{Type: schema.String, Desc: desc, Required: required}
}

// Info returns the schema the model sees for a tool.
func Info(n Name) *schema.ToolInfo {
	switch n {
	case RetrieveDocuments:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Use this tool to search the indexed knowledge base for information relevant to the user's question. Provide a concise natural language query.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": stringParam("Search query to retrieve supporting documents.", true),
			}),
		}
	case FredChart:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Render a chart for a FRED series and share the image with the user. Call this when the user asks for a plot or visualization.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"series_id": stringParam("Exact FRED series identifier (e.g. CPIAUCSL).", true),
			}),
		}
	case FredRecentData:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Fetch recent numeric datapoints for a FRED series and use them in analysis. Call this when the user needs the latest figures or trends.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"series_id": stringParam("Exact FRED series identifier (e.g. UNRATE).", true),
				"limit": {
					Type: schema.Integer,
					Desc: "Number of most recent datapoints to return (default 12).",
				},
			}),
		}
	case FredReleaseSchedule:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Resolve a FRED series to its release and return upcoming release dates.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"series_id": stringParam("FRED series identifier (e.g. UNRATE, CPIAUCSL).", true),
			}),
		}
	case FredReleaseStructure:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Fetch release metadata and table structure by release name (e.g. H.4.1).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"release_name": stringParam("FRED release name to inspect (e.g. H.4.1).", true),
			}),
		}
	case FredSearchSeries:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Search the FRED catalog for series matching a text query.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": stringParam("Search text to find FRED series.", true),
			}),
		}
	case FredCorrelation:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Analyze how two FRED series move together by comparing YoY changes and lead/lag behavior.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"leading_series_id": stringParam("Series assumed to lead (default: M2SL).", false),
				"lagging_series_id": stringParam("Series assumed to lag (default: CPIAUCSL).", false),
				"start_date":        stringParam("Start date for the analysis window (YYYY-MM-DD, default: 1970-01-01).", false),
				"end_date":          stringParam("End date for the analysis window (YYYY-MM-DD, default: 1979-12-31).", false),
				"max_lag_months": {
					Type: schema.Integer,
					Desc: "Largest lead of the leading series to test, in months (default: 48).",
				},
			}),
		}
	case FraserSearchTitles:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Search the FRASER FOMC catalog for meeting titles (e.g. 'Meeting, January 2010') to retrieve PDF URLs.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": stringParam("Fuzzy title query, e.g. 'Meeting, January 26-27, 2010'.", true),
			}),
		}
	case FraserHybridSearch:
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Hybrid semantic and keyword search across FRASER/FOMC documents. Include a date for best results.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": stringParam("Search text, ideally including a meeting date.", true),
			}),
		}
	case FomcLatestDecision:
		// no parameters
		return &schema.ToolInfo{
			Name: string(n),
			Desc: "Fetch the latest FOMC decision card (target range, vote, tools).",
		}
	}
	return nil
}

// Infos returns the schemas of the whole set, for binding to the chat model.
func Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(All))
	for _, n := range All {
		out = append(out, Info(n))
	}
	return out
}
