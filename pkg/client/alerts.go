package client

import (
	"context"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/pagination"
)

// OperationListAlerts is the operation name used in requests and metrics.
const OperationListAlerts = "ListAlerts"

const listAlertsQuery = `query ListAlerts($input: ListAlertsInput) {
  alerts(input: $input) {
    alertSummaries {
      alertId
      ruleId
      title
      severity
      status
      creationTime
      updateTime
      eventsMatched
    }
    lastEvaluatedKey
  }
}`

// Alert is one alert summary row of the alert list.
type Alert struct {
	AlertID       string    `json:"alertId"`
	RuleID        string    `json:"ruleId"`
	Title         string    `json:"title"`
	Severity      string    `json:"severity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"creationTime"`
	UpdatedAt     time.Time `json:"updateTime"`
	EventsMatched int       `json:"eventsMatched"`
}

type listAlertsData struct {
	Alerts struct {
		AlertSummaries   []Alert `json:"alertSummaries"`
		LastEvaluatedKey *string `json:"lastEvaluatedKey"`
	} `json:"alerts"`
}

// ListAlertsInput builds the $input variable of the ListAlerts query.
// Unset filters are omitted so the server applies its defaults.
func ListAlertsInput(req pagination.Request) map[string]any {
	input := map[string]any{}
	if req.PageSize > 0 {
		input["pageSize"] = req.PageSize
	}
	if req.Token != "" {
		input["exclusiveStartKey"] = req.Token
	}

	p := req.Params
	if p.SortBy != "" {
		input["sortBy"] = p.SortBy
	}
	if p.SortDir != "" {
		input["sortDir"] = string(p.SortDir)
	}
	if len(p.Severity) > 0 {
		input["severity"] = p.Severity
	}
	if len(p.Status) > 0 {
		input["status"] = p.Status
	}
	if p.NameContains != "" {
		input["nameContains"] = p.NameContains
	}
	if p.RuleID != "" {
		input["ruleId"] = p.RuleID
	}
	if p.CreatedAtAfter != nil {
		input["createdAtAfter"] = p.CreatedAtAfter.UTC().Format(time.RFC3339)
	}
	if p.CreatedAtBefore != nil {
		input["createdAtBefore"] = p.CreatedAtBefore.UTC().Format(time.RFC3339)
	}

	return input
}

// ListAlerts fetches one page of alerts.
func (c *Client) ListAlerts(ctx context.Context, req pagination.Request) (pagination.Page[Alert], error) {
	var data listAlertsData
	variables := map[string]any{"input": ListAlertsInput(req)}

	if err := c.Query(ctx, OperationListAlerts, listAlertsQuery, variables, &data); err != nil {
		return pagination.Page[Alert]{}, err
	}

	page := pagination.Page[Alert]{
		Items: data.Alerts.AlertSummaries,
	}
	if data.Alerts.LastEvaluatedKey != nil {
		page.Token = *data.Alerts.LastEvaluatedKey
	}

	c.logger.Debug().
		Int("alerts", len(page.Items)).
		Bool("has_more", page.HasMore()).
		Msg("Alert page received")

	return page, nil
}

// Fetcher exposes ListAlerts as the accumulator's query interface.
func (c *Client) Fetcher() pagination.Fetcher[Alert] {
	return pagination.FetcherFunc[Alert](c.ListAlerts)
}
