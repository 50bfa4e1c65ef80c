package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"flowengine/domain/core/entities"
)

const (
	day = 24 * time.Hour

	defaultWindow      = 7 * day
	burndownLookback   = 30 * day
	recentActivity     = 3 * day
	trendWindow        = 3
	lowVelocityLimit   = 1.0
	highVelocityLimit  = 5.0
	defaultStoryPoints = 1.0
	dateLayout         = "2006-01-02"
)

// InsightType classifies a progress insight
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
)

// Insight is a rule-generated observation about progress
type Insight struct {
	Type    InsightType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// TrendPoint is one day of the velocity trend
type TrendPoint struct {
	Date      string  `json:"date"`
	Velocity  float64 `json:"velocity"`
	Completed int     `json:"completed"`
}

// BurndownPoint is the remaining work at an instant
type BurndownPoint struct {
	Timestamp int64   `json:"timestamp"`
	Remaining float64 `json:"remaining"`
}

// ProgressReport summarizes completion, velocity and trend over a window
type ProgressReport struct {
	TimeRange            entities.TimeRange `json:"timeRange"`
	WindowDays           float64            `json:"windowDays"`
	TotalNodes           int                `json:"totalNodes"`
	CompletedNodes       int                `json:"completedNodes"`
	BlockedNodes         int                `json:"blockedNodes"`
	CompletionRate       float64            `json:"completionRate"`
	TotalStoryPoints     float64            `json:"totalStoryPoints"`
	CompletedStoryPoints float64            `json:"completedStoryPoints"`
	RemainingStoryPoints float64            `json:"remainingStoryPoints"`
	Velocity             float64            `json:"velocity"`
	DailyCompletions     map[string]int     `json:"dailyCompletions"`
	VelocityTrend        []TrendPoint       `json:"velocityTrend"`
	Burndown             []BurndownPoint    `json:"burndown"`
	EstimatedCompletion  *int64             `json:"estimatedCompletion,omitempty"`
	Insights             []Insight          `json:"insights"`
}

// DefaultWindow is the trailing seven days ending at now
func DefaultWindow(now time.Time) entities.TimeRange {
	return entities.TimeRange{
		Start: now.Add(-defaultWindow).UnixMilli(),
		End:   now.UnixMilli(),
	}
}

// AnalyzeProgress turns a node set and an event timeline into completion,
// velocity, trend and burndown statistics. A nil window means the trailing
// seven days ending at now. Story points default to 1 where unset.
func AnalyzeProgress(
	nodes []entities.Node,
	timeline []entities.TimelineEvent,
	window *entities.TimeRange,
	now time.Time,
) ProgressReport {
	tr := DefaultWindow(now)
	if window != nil {
		tr = *window
	}

	report := ProgressReport{
		TimeRange:        tr,
		WindowDays:       tr.Days(),
		TotalNodes:       len(nodes),
		DailyCompletions: make(map[string]int),
		VelocityTrend:    []TrendPoint{},
		Burndown:         []BurndownPoint{},
		Insights:         []Insight{},
	}

	for _, node := range nodes {
		points := node.StoryPointsOr(defaultStoryPoints)
		report.TotalStoryPoints += points
		if node.IsCompleted() {
			report.CompletedNodes++
			report.CompletedStoryPoints += points
		} else {
			report.RemainingStoryPoints += points
		}
		if node.IsBlocked() {
			report.BlockedNodes++
		}
	}
	if report.TotalNodes > 0 {
		report.CompletionRate = float64(report.CompletedNodes) / float64(report.TotalNodes)
	}

	report.Velocity = report.CompletedStoryPoints / math.Max(1, report.WindowDays)

	completions := completionsInWindow(timeline, tr)
	for _, event := range completions {
		report.DailyCompletions[event.Time().Format(dateLayout)]++
	}
	report.VelocityTrend = velocityTrend(report.DailyCompletions)
	report.Burndown = burndown(entities.IndexNodes(nodes), completions, report.TotalStoryPoints, now)

	if report.Velocity > 0 {
		report.EstimatedCompletion = estimateCompletion(now, report.RemainingStoryPoints/report.Velocity)
	}

	report.Insights = progressInsights(report, timeline, now)
	return report
}

// completionsInWindow returns in-window node_completed events sorted by time.
// Duplicates are kept.
func completionsInWindow(timeline []entities.TimelineEvent, tr entities.TimeRange) []entities.TimelineEvent {
	completions := make([]entities.TimelineEvent, 0)
	for _, event := range timeline {
		if event.IsCompletion() && tr.Contains(event.Timestamp) {
			completions = append(completions, event)
		}
	}
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].Timestamp < completions[j].Timestamp
	})
	return completions
}

// velocityTrend pairs each day's completions with the mean over that day and
// up to two days before it in the series
func velocityTrend(daily map[string]int) []TrendPoint {
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	trend := make([]TrendPoint, 0, len(days))
	for i, d := range days {
		start := i - trendWindow + 1
		if start < 0 {
			start = 0
		}
		sum := 0
		for _, prev := range days[start : i+1] {
			sum += daily[prev]
		}
		trend = append(trend, TrendPoint{
			Date:      d,
			Velocity:  float64(sum) / float64(i+1-start),
			Completed: daily[d],
		})
	}
	return trend
}

// estimateCompletion projects now forward by days. It returns nil when the
// instant does not fit in epoch milliseconds.
func estimateCompletion(now time.Time, days float64) *int64 {
	eta := float64(now.UnixMilli()) + days*float64(day/time.Millisecond)
	if math.IsNaN(eta) || eta >= math.MaxInt64 || eta < math.MinInt64 {
		return nil
	}
	ms := int64(eta)
	return &ms
}

// burndown starts from full scope thirty days before now, or at the first
// completion if that is earlier, and steps down once per completion.
// Remaining work never drops below zero.
func burndown(index map[string]entities.Node, completions []entities.TimelineEvent, scope float64, now time.Time) []BurndownPoint {
	start := now.Add(-burndownLookback).UnixMilli()
	if len(completions) > 0 && completions[0].Timestamp < start {
		start = completions[0].Timestamp
	}

	series := make([]BurndownPoint, 0, len(completions)+1)
	series = append(series, BurndownPoint{Timestamp: start, Remaining: scope})

	remaining := scope
	for _, event := range completions {
		done := defaultStoryPoints
		if node, ok := index[event.NodeID]; ok {
			done = node.StoryPointsOr(defaultStoryPoints)
		}
		remaining = math.Max(0, remaining-done)
		series = append(series, BurndownPoint{Timestamp: event.Timestamp, Remaining: remaining})
	}
	return series
}

// progressInsights applies the insight rules. Rules are independent and any
// number of them may fire.
func progressInsights(report ProgressReport, timeline []entities.TimelineEvent, now time.Time) []Insight {
	insights := make([]Insight, 0)

	if report.Velocity < lowVelocityLimit {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Code:    "low_velocity",
			Message: "Low velocity: fewer than one story point completed per day",
		})
	}
	if report.Velocity > highVelocityLimit {
		insights = append(insights, Insight{
			Type:    InsightSuccess,
			Code:    "high_velocity",
			Message: "High velocity: more than five story points completed per day",
		})
	}
	if report.BlockedNodes > 0 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Code:    "blocked_tasks",
			Message: fmt.Sprintf("Blocked tasks: %d node(s) are blocked", report.BlockedNodes),
		})
	}

	recent := entities.TimeRange{Start: now.Add(-recentActivity).UnixMilli(), End: now.UnixMilli()}
	if len(completionsInWindow(timeline, recent)) == 0 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Code:    "no_recent_completions",
			Message: "No recent completions in the last 3 days",
		})
	}

	return insights
}
