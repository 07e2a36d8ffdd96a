package fomc

import (
	"fmt"
	"strconv"
)

// MeetingView is the JSON shape of a meeting row.
type MeetingView struct {
	MeetingID         string   `json:"meeting_id"`
	MeetingDate       string   `json:"meeting_date"`
	TargetRangeLow    *float64 `json:"target_range_low"`
	TargetRangeHigh   *float64 `json:"target_range_high"`
	IOER              *float64 `json:"ioer"`
	OnRRP             *float64 `json:"on_rrp"`
	RepoMinRate       *float64 `json:"repo_min_rate"`
	PrimaryCreditRate *float64 `json:"primary_credit_rate"`
	VotesFor          *int     `json:"votes_for"`
	VotesAgainst      *int     `json:"votes_against"`
}

func (m Meeting) View() MeetingView {
	return MeetingView{
		MeetingID:         m.MeetingID,
		MeetingDate:       m.MeetingDate.Format(dateLayout),
		TargetRangeLow:    m.TargetRangeLow,
		TargetRangeHigh:   m.TargetRangeHigh,
		IOER:              m.IOER,
		OnRRP:             m.OnRRP,
		RepoMinRate:       m.RepoMinRate,
		PrimaryCreditRate: m.PrimaryCreditRate,
		VotesFor:          m.VotesFor,
		VotesAgainst:      m.VotesAgainst,
	}
}

type Range struct {
	Low  *float64 `json:"low"`
	High *float64 `json:"high"`
}

type RangeChange struct {
	Previous Range `json:"previous"`
	Current  Range `json:"current"`
}

type Changes struct {
	TargetRange RangeChange `json:"target_range"`
}

// Card summarizes the latest decision against the prior meeting.
// Changes is nil unless the target range moved.
type Card struct {
	Headline    string              `json:"headline"`
	Vote        string              `json:"vote"`
	Tools       map[string]*float64 `json:"tools"`
	Changes     *Changes            `json:"changes,omitempty"`
	MeetingID   string              `json:"meeting_id"`
	MeetingDate string              `json:"meeting_date"`
}

// Payload is the latest decision with its card.
type Payload struct {
	Latest   MeetingView  `json:"latest"`
	Previous *MeetingView `json:"previous"`
	Card     Card         `json:"card"`
}

func FormatCard(latest MeetingView, previous *MeetingView) Card {
	card := Card{
		Headline: fmt.Sprintf("Federal funds target range: %s%%–%s%%",
			formatRate(latest.TargetRangeLow), formatRate(latest.TargetRangeHigh)),
		Vote: fmt.Sprintf("Vote: %s–%s", formatCount(latest.VotesFor), formatCount(latest.VotesAgainst)),
		Tools: map[string]*float64{
			"IOER":           latest.IOER,
			"ON RRP":         latest.OnRRP,
			"Repo min":       latest.RepoMinRate,
			"Primary credit": latest.PrimaryCreditRate,
		},
		MeetingID:   latest.MeetingID,
		MeetingDate: latest.MeetingDate,
	}

	if previous != nil &&
		(!sameRate(latest.TargetRangeLow, previous.TargetRangeLow) ||
			!sameRate(latest.TargetRangeHigh, previous.TargetRangeHigh)) {
		card.Changes = &Changes{TargetRange: RangeChange{
			Previous: Range{Low: previous.TargetRangeLow, High: previous.TargetRangeHigh},
			Current:  Range{Low: latest.TargetRangeLow, High: latest.TargetRangeHigh},
		}}
	}
	return card
}

func sameRate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatCount(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
