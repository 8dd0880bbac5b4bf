package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &values))
	return values
}

func TestCustomWebhook_Create(t *testing.T) {
	schema, err := DestinationSchema(OutputTypeCustomWebhook, false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		values string
		want   map[string][]string
	}{
		{
			name: "valid",
			values: `{"displayName":"Ops","defaultForSeverity":["CRITICAL","HIGH"],
				"outputConfig":{"customWebhook":{"webhookURL":"https://hooks.example.com/x"}}}`,
			want: map[string][]string{},
		},
		{
			name:   "empty form",
			values: `{}`,
			want: map[string][]string{
				"defaultForSeverity":                    {"This field is required"},
				"displayName":                           {"This field is required"},
				"outputConfig.customWebhook.webhookURL": {"This field is required"},
			},
		},
		{
			name: "invalid webhook and severity",
			values: `{"displayName":"Ops","defaultForSeverity":["CRITICAL","URGENT"],
				"outputConfig":{"customWebhook":{"webhookURL":"not-a-url"}}}`,
			want: map[string][]string{
				"defaultForSeverity[1]":                 {"Must be one of: CRITICAL, HIGH, MEDIUM, LOW, INFO"},
				"outputConfig.customWebhook.webhookURL": {"Must be a valid webhook URL"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(schema, decode(t, tt.values))
			assert.Equal(t, tt.want, errs.ByPath())
		})
	}
}

func TestCustomWebhook_EditKeepsHiddenURL(t *testing.T) {
	schema, err := DestinationSchema(OutputTypeCustomWebhook, true)
	require.NoError(t, err)

	values := decode(t, `{"displayName":"Ops","defaultForSeverity":["LOW"]}`)
	assert.Empty(t, Validate(schema, values))

	values = decode(t, `{"displayName":"Ops","defaultForSeverity":["LOW"],
		"outputConfig":{"customWebhook":{"webhookURL":"nope"}}}`)
	assert.Equal(t, []string{"Must be a valid webhook URL"},
		Validate(schema, values).For("outputConfig.customWebhook.webhookURL"))
}

func TestPagerDuty(t *testing.T) {
	schema, err := DestinationSchema(OutputTypePagerDuty, false)
	require.NoError(t, err)

	values := decode(t, `{"displayName":"PD","defaultForSeverity":["INFO"],
		"outputConfig":{"pagerDuty":{"integrationKey":"short"}}}`)
	assert.Equal(t, []string{"Must be at least 32 characters"},
		Validate(schema, values).For("outputConfig.pagerDuty.integrationKey"))

	values = decode(t, `{"displayName":"PD","defaultForSeverity":["INFO"],
		"outputConfig":{"pagerDuty":{"integrationKey":"0123456789abcdef0123456789abcdef"}}}`)
	assert.Empty(t, Validate(schema, values))
}

func TestDestinationSchema_Unknown(t *testing.T) {
	_, err := DestinationSchema("carrier-pigeon", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestOutputTypes(t *testing.T) {
	assert.Equal(t, []string{"customwebhook", "pagerduty", "slack"}, OutputTypes())
}
