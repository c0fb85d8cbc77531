package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_FromString(t *testing.T) {
	var p ProductSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","price":"19.99","sale":true}`), &p))

	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, Price("19.99"), p.Price)
	assert.True(t, p.OnSale)
}

func TestPrice_FromNumber(t *testing.T) {
	var p ProductSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Hoodie","price":128.5,"sale":false}`), &p))

	assert.Equal(t, "128.5", p.Price.String())
	assert.False(t, p.OnSale)
}

func TestPrice_NullAndMissing(t *testing.T) {
	var p ProductSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Jacket","price":null}`), &p))
	assert.Equal(t, Price(""), p.Price)

	p = ProductSnapshot{}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Jacket"}`), &p))
	assert.Equal(t, Price(""), p.Price)
}

func TestPrice_RejectsObjects(t *testing.T) {
	var p ProductSnapshot
	assert.Error(t, json.Unmarshal([]byte(`{"price":{"amount":1}}`), &p))
}

func TestErrorResponse_Text(t *testing.T) {
	assert.Equal(t, "bad link", ErrorResponse{Error: "bad link", Message: "other"}.Text())
	assert.Equal(t, "Failed to send email", ErrorResponse{Message: "Failed to send email"}.Text())
	assert.Equal(t, "", ErrorResponse{}.Text())
}

func TestNewSubmissionRequest_TrimsFields(t *testing.T) {
	req := NewSubmissionRequest("  a@b.com ", "\thttps://shop.example/p/1\n")

	assert.Equal(t, "a@b.com", req.RecipientEmail)
	assert.Equal(t, "https://shop.example/p/1", req.ProductLink)
}

func TestRecipient_ObjectAndString(t *testing.T) {
	var resp RecipientsResponse
	require.NoError(t, json.Unmarshal([]byte(`{"recipients":[{"email":"a@b.com"},"c@d.com"]}`), &resp))

	assert.Equal(t, []Recipient{{Email: "a@b.com"}, {Email: "c@d.com"}}, resp.Recipients)
}

func TestHealthReport_Healthy(t *testing.T) {
	var report HealthReport
	require.NoError(t, json.Unmarshal([]byte(`{"status":"degraded","issues":["no smtp"],"storage":{"recipients_count":2}}`), &report))

	assert.False(t, report.Healthy())
	assert.Equal(t, []string{"no smtp"}, report.Issues)
	assert.Equal(t, 2, report.Storage.RecipientsCount)
	assert.True(t, HealthReport{Status: "healthy"}.Healthy())
}
