// Package stats turns compliance report counts into chart data.
package stats

import (
	"fmt"
	"strings"
)

// Policy statuses counted in a report.
const (
	StatusPass  = "pass"
	StatusFail  = "fail"
	StatusError = "error"
)

// ChartTitle is the summary title of the failing policies chart.
const ChartTitle = "Total Failing Policies"

// PassingLabel labels the bar summing passing policies.
const PassingLabel = "Passing"

// Severities in chart order.
var Severities = []string{"critical", "high", "medium", "low", "info"}

// StatusCounts holds the policy count per status for one severity.
type StatusCounts struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Error int `json:"error"`
}

// Count returns the count of a single status.
func (c StatusCounts) Count(status string) (int, error) {
	switch status {
	case StatusPass:
		return c.Pass, nil
	case StatusFail:
		return c.Fail, nil
	case StatusError:
		return c.Error, nil
	default:
		return 0, fmt.Errorf("unknown status %q", status)
	}
}

// ReportBySeverity is the organization-wide policy report.
// A nil severity counts as zero for every status.
type ReportBySeverity struct {
	Critical *StatusCounts `json:"critical"`
	High     *StatusCounts `json:"high"`
	Medium   *StatusCounts `json:"medium"`
	Low      *StatusCounts `json:"low"`
	Info     *StatusCounts `json:"info"`
}

func (r ReportBySeverity) severity(name string) (*StatusCounts, error) {
	switch name {
	case "critical":
		return r.Critical, nil
	case "high":
		return r.High, nil
	case "medium":
		return r.Medium, nil
	case "low":
		return r.Low, nil
	case "info":
		return r.Info, nil
	default:
		return nil, fmt.Errorf("unknown severity %q", name)
	}
}

// CountBySeverityAndStatus sums the given statuses of one severity.
func CountBySeverityAndStatus(report ReportBySeverity, severity string, statuses ...string) (int, error) {
	counts, err := report.severity(severity)
	if err != nil {
		return 0, err
	}
	if counts == nil {
		return 0, nil
	}

	total := 0
	for _, status := range statuses {
		n, err := counts.Count(status)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Bar is one bar of a chart.
type Bar struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Chart is a titled bar chart with a headline total.
type Chart struct {
	Title string `json:"title"`
	Total int    `json:"total"`
	Bars  []Bar  `json:"bars"`
}

// FailingPoliciesChart builds one bar per severity counting failing and
// erroring policies, followed by a bar of all passing policies. Total is the
// number of failing policies.
func FailingPoliciesChart(report ReportBySeverity) Chart {
	chart := Chart{
		Title: ChartTitle,
		Bars:  make([]Bar, 0, len(Severities)+1),
	}

	passing := 0
	for _, severity := range Severities {
		// Severities and statuses are fixed here, so lookups cannot fail
		failing, _ := CountBySeverityAndStatus(report, severity, StatusFail, StatusError)
		passed, _ := CountBySeverityAndStatus(report, severity, StatusPass)

		chart.Bars = append(chart.Bars, Bar{
			Key:   severity,
			Label: capitalize(severity),
			Value: failing,
		})
		chart.Total += failing
		passing += passed
	}

	chart.Bars = append(chart.Bars, Bar{
		Key:   StatusPass,
		Label: PassingLabel,
		Value: passing,
	})

	return chart
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
