package validation

import (
	"fmt"
	"sort"
)

// Severities accepted by defaultForSeverity.
var Severities = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}

// Destination output types with a known form schema.
const (
	OutputTypeCustomWebhook = "customwebhook"
	OutputTypeSlack         = "slack"
	OutputTypePagerDuty     = "pagerduty"
)

const webhookURLMessage = "Must be a valid webhook URL"

// BaseDestinationSchema holds the fields shared by every destination form.
func BaseDestinationSchema() Schema {
	return Schema{
		"displayName": {Required("")},
		"defaultForSeverity": {
			Required(""),
			Each(OneOf(Severities...)),
		},
	}
}

// webhookURL validates a webhook field. Editing an existing destination
// leaves it optional since the stored secret is never sent back.
func webhookURL(existing bool) []Rule {
	if existing {
		return []Rule{URL(webhookURLMessage)}
	}
	return []Rule{Required(""), URL(webhookURLMessage)}
}

// CustomWebhookSchema validates outputConfig.customWebhook.
func CustomWebhookSchema(existing bool) Schema {
	return Object("outputConfig.customWebhook", Schema{
		"webhookURL": webhookURL(existing),
	})
}

// SlackSchema validates outputConfig.slack.
func SlackSchema(existing bool) Schema {
	return Object("outputConfig.slack", Schema{
		"webhookURL": webhookURL(existing),
	})
}

// PagerDutySchema validates outputConfig.pagerDuty.
func PagerDutySchema(existing bool) Schema {
	rules := []Rule{MinLen(32), MaxLen(32)}
	if !existing {
		rules = append([]Rule{Required("")}, rules...)
	}
	return Object("outputConfig.pagerDuty", Schema{
		"integrationKey": rules,
	})
}

var destinationSchemas = map[string]func(existing bool) Schema{
	OutputTypeCustomWebhook: CustomWebhookSchema,
	OutputTypeSlack:         SlackSchema,
	OutputTypePagerDuty:     PagerDutySchema,
}

// DestinationSchema returns the full form schema of an output type: the base
// fields merged with the type specific ones.
func DestinationSchema(outputType string, existing bool) (Schema, error) {
	build, ok := destinationSchemas[outputType]
	if !ok {
		return nil, fmt.Errorf("unknown destination type %q (supported: %v)", outputType, OutputTypes())
	}
	return BaseDestinationSchema().Concat(build(existing)), nil
}

// OutputTypes lists the supported destination types.
func OutputTypes() []string {
	types := make([]string, 0, len(destinationSchemas))
	for t := range destinationSchemas {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
