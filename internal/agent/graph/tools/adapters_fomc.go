package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/fredgpt/server/internal/fomc"
)

func (a *Adapters) LatestDecision(ctx context.Context) Result {
	if a.Meetings == nil {
		return failed(fmt.Sprintf("Failed to fetch latest FOMC decision: %v", errMeetingsUnavailable), errMeetingsUnavailable)
	}
	payload, err := a.Meetings.LatestPayload(ctx)
	if err != nil {
		if errors.Is(err, fomc.ErrNoMeetings) {
			return Result{Message: "No FOMC meetings are stored yet.", Error: fomc.ErrNoMeetings.Error()}
		}
		return failed(fmt.Sprintf("Failed to fetch latest FOMC decision: %v", err), err)
	}
	return Result{
		Message: "Fetched latest FOMC decision card.",
		Payload: payload,
	}
}

func (a *Adapters) FomcTitles(ctx context.Context, query string) Result {
	if a.Meetings == nil {
		return failed(fmt.Sprintf("Failed to search FOMC titles for '%s': %v", query, errMeetingsUnavailable), errMeetingsUnavailable)
	}
	matches, err := a.Meetings.SearchTitles(ctx, query, fomc.DefaultTitleLimit)
	if err != nil {
		return failed(fmt.Sprintf("Failed to search FOMC titles for '%s': %v", query, err), err)
	}
	if matches == nil {
		matches = []fomc.TitleMatch{}
	}
	return Result{
		Message: fmt.Sprintf("Found %d FOMC titles for '%s'.", len(matches), query),
		Payload: map[string]any{"results": matches},
	}
}
