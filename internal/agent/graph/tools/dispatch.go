package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/model"
	logx "github.com/fredgpt/server/pkg/logger"
)

// BudgetNotice is the tool response appended once the call budget is spent.
const BudgetNotice = "Tool-call limit reached. Provide the best answer you can with the information already collected."

// Outcome labels reported to the Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown"
	OutcomeInvalid = "invalid"
	OutcomeMissing = "missing"
	OutcomeBudget  = "budget"
)

// Recorder observes every tool call the dispatcher handles.
type Recorder interface {
	ToolCall(tool, outcome string)
}

// Outcome is everything one Act step contributes to the run state.
type Outcome struct {
	Messages  []*schema.Message
	Executed  int
	Exhausted bool

	Attachments []model.Attachment
	SeriesData  []model.SeriesBlock
	Sources     []model.SourceRecord
	Docs        []model.Document
	Queries     []string
}

type Dispatcher struct {
	adapters *Adapters
	budget   int
	recorder Recorder
}

type DispatcherOption func(*Dispatcher)

func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = r }
}

func NewDispatcher(adapters *Adapters, budget int, opts ...DispatcherOption) *Dispatcher {
	if adapters == nil {
		adapters = &Adapters{}
	}
	d := &Dispatcher{adapters: adapters, budget: budget}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Budget() int { return d.budget }

// Dispatch runs the calls sequentially in the order given. used is the number
// of calls already executed in this run. Diagnostics for unknown tools and bad
// arguments are answered without consuming budget.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []schema.ToolCall, used int) Outcome {
	var out Outcome
	for _, tc := range calls {
		name := tc.Function.Name
		if used+out.Executed >= d.budget {
			logx.Warn().Str("tool", name).Int("budget", d.budget).Msg("tool-call budget exhausted")
			out.Messages = append(out.Messages, schema.ToolMessage(BudgetNotice, tc.ID))
			out.Exhausted = true
			d.record(name, OutcomeBudget)
			break
		}

		n, ok := Lookup(name)
		if !ok {
			logx.Warn().Str("tool", name).Msg("unknown tool requested")
			out.Messages = append(out.Messages, schema.ToolMessage(fmt.Sprintf("Tool '%s' is not implemented.", name), tc.ID))
			d.record(name, OutcomeUnknown)
			continue
		}

		c := d.bind(n)(ctx, n, tc.Function.Arguments)
		if c.diagnostic != "" {
			logx.Debug().Str("tool", name).Str("diagnostic", c.diagnostic).Msg("tool call rejected")
			out.Messages = append(out.Messages, schema.ToolMessage(c.diagnostic, tc.ID))
			d.record(name, c.outcome)
			continue
		}

		res := c.result
		out.Executed++
		out.Messages = append(out.Messages, schema.ToolMessage(res.Content(), tc.ID))
		out.Attachments = append(out.Attachments, res.Attachments...)
		out.SeriesData = append(out.SeriesData, res.SeriesData...)
		out.Docs = append(out.Docs, res.Docs...)
		out.Queries = append(out.Queries, res.Queries...)
		out.Sources = append(out.Sources, model.SourceRecord{
			Tool:   name,
			Input:  c.input,
			Output: res.sourceOutput(),
			Error:  res.Error,
		})

		if res.Error != "" {
			logx.Warn().Str("tool", name).Str("error", res.Error).Msg("tool call failed")
			d.record(name, OutcomeError)
		} else {
			logx.Info().Str("tool", name).Int("count", used+out.Executed).Msg("tool call executed")
			d.record(name, OutcomeOK)
		}
	}
	return out
}

func (d *Dispatcher) record(tool, outcome string) {
	if d.recorder != nil {
		d.recorder.ToolCall(tool, outcome)
	}
}

type invocation struct {
	result     Result
	input      map[string]any
	diagnostic string
	outcome    string
}

type binding func(ctx context.Context, name Name, raw string) invocation

type arguments interface {
	complete() bool
}

// bind decodes raw JSON arguments into A and runs the adapter when the
// required fields are present.
func bind[A arguments](missing string, run func(context.Context, A) Result) binding {
	return func(ctx context.Context, name Name, raw string) invocation {
		var args A
		input := map[string]any{}
		if strings.TrimSpace(raw) != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return invocation{
					diagnostic: fmt.Sprintf("Invalid arguments for tool '%s': %v", name, err),
					outcome:    OutcomeInvalid,
				}
			}
			_ = json.Unmarshal([]byte(raw), &input)
		}
		if !args.complete() {
			return invocation{diagnostic: missing, outcome: OutcomeMissing}
		}
		return invocation{result: run(ctx, args), input: input}
	}
}

func (d *Dispatcher) bind(n Name) binding {
	a := d.adapters
	switch n {
	case RetrieveDocuments:
		return bind("No query provided to retrieval tool.", func(ctx context.Context, q queryArgs) Result {
			return a.RetrieveDocuments(ctx, q.text())
		})
	case FredChart:
		return bind("A FRED series_id is required for chart generation.", func(ctx context.Context, s seriesArgs) Result {
			return a.Chart(ctx, s.id())
		})
	case FredRecentData:
		return bind("A FRED series_id is required to fetch recent data.", func(ctx context.Context, s seriesArgs) Result {
			return a.RecentData(ctx, s.id(), s.Limit.value)
		})
	case FredReleaseSchedule:
		return bind("A FRED series_id is required to fetch the series release schedule.", func(ctx context.Context, s seriesArgs) Result {
			return a.ReleaseSchedule(ctx, s.id())
		})
	case FredReleaseStructure:
		return bind("A release_name is required to fetch release structure metadata.", func(ctx context.Context, r releaseArgs) Result {
			return a.ReleaseStructure(ctx, strings.TrimSpace(r.ReleaseName))
		})
	case FredSearchSeries:
		return bind("A search query is required to search FRED series.", func(ctx context.Context, q queryArgs) Result {
			return a.SearchSeries(ctx, q.text())
		})
	case FredCorrelation:
		return bind("", func(ctx context.Context, c correlationArgs) Result {
			return a.Correlation(ctx, c.resolve())
		})
	case FraserSearchTitles:
		return bind("A query is required to search FOMC titles.", func(ctx context.Context, q queryArgs) Result {
			return a.FomcTitles(ctx, q.text())
		})
	case FraserHybridSearch:
		return bind("A query is required for hybrid search.", func(ctx context.Context, q queryArgs) Result {
			return a.HybridSearch(ctx, q.text())
		})
	case FomcLatestDecision:
		return bind("", func(ctx context.Context, _ noArgs) Result {
			return a.LatestDecision(ctx)
		})
	}
	panic(fmt.Sprintf("tools: no binding for %q", n))
}

type queryArgs struct {
	Query string `json:"query"`
}

func (q queryArgs) text() string   { return strings.TrimSpace(q.Query) }
func (q queryArgs) complete() bool { return q.text() != "" }

type seriesArgs struct {
	SeriesID string  `json:"series_id"`
	Limit    flexInt `json:"limit"`
}

func (s seriesArgs) id() string     { return strings.ToUpper(strings.TrimSpace(s.SeriesID)) }
func (s seriesArgs) complete() bool { return s.id() != "" }

type releaseArgs struct {
	ReleaseName string `json:"release_name"`
}

func (r releaseArgs) complete() bool { return strings.TrimSpace(r.ReleaseName) != "" }

type correlationArgs struct {
	LeadingSeriesID string  `json:"leading_series_id"`
	LaggingSeriesID string  `json:"lagging_series_id"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	MaxLagMonths    flexInt `json:"max_lag_months"`
}

func (correlationArgs) complete() bool { return true }

func (c correlationArgs) resolve() CorrelationArgs {
	out := CorrelationArgs{
		LeadingSeriesID: strings.ToUpper(strings.TrimSpace(c.LeadingSeriesID)),
		LaggingSeriesID: strings.ToUpper(strings.TrimSpace(c.LaggingSeriesID)),
		StartDate:       strings.TrimSpace(c.StartDate),
		EndDate:         strings.TrimSpace(c.EndDate),
	}
	if c.MaxLagMonths.set {
		lag := c.MaxLagMonths.value
		out.MaxLagMonths = &lag
	}
	return out
}

type noArgs struct{}

func (noArgs) complete() bool { return true }

// flexInt accepts 12, 12.0 and "12". Models are loose with numeric arguments.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", b)
	}
	f.value = int(v)
	f.set = true
	return nil
}
