package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/set-night/imeicheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImeiClientLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "simlock2", r.URL.Query().Get("checker"))
		assert.Equal(t, "490154203237518", r.URL.Query().Get("number"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"IMEI": "490154203237518",
			"Description": "<b>iPhone 12</b><br>128GB &amp; Blue",
			"is replaced": false,
			"SIM Lock": "Unlocked",
			"MEID": null
		}`))
	}))
	defer srv.Close()

	client := NewImeiClient(srv.URL, "key", "simlock2")
	report, err := client.Lookup(context.Background(), "490154203237518")
	require.NoError(t, err)

	assert.Equal(t, "490154203237518", report["IMEI"])
	assert.Equal(t, "iPhone 12\n128GB & Blue", report["Description"])
	assert.Equal(t, "false", report["is replaced"])
	assert.Equal(t, "Unlocked", report["SIM Lock"])
	_, hasMEID := report["MEID"]
	assert.False(t, hasMEID)
}

func TestImeiClientLookupErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "http error", status: http.StatusBadGateway, body: `{}`},
		{name: "api error", status: http.StatusOK, body: `{"error":"Insufficient balance"}`},
		{name: "not json", status: http.StatusOK, body: `<html>maintenance</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewImeiClient(srv.URL, "key", "simlock2").Lookup(context.Background(), "490154203237518")
			require.Error(t, err)
		})
	}
}

func TestImeiClientLookupRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IMEI":"` + strings.Repeat("a", config.MaxLookupResponseBytes) + `"}`))
	}))
	defer srv.Close()

	_, err := NewImeiClient(srv.URL, "key", "simlock2").Lookup(context.Background(), "490154203237518")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFormatReport(t *testing.T) {
	text := FormatReport(ImeiReport{
		"IMEI":          "490154203237518",
		"Serial Number": "F2LXK0XXXXXX",
		"SIM Lock":      "Unlocked",
	})

	assert.True(t, strings.HasPrefix(text, "📱 *IMEI Information:*\n\n🔹 *IMEI 1:* 490154203237518\n"))
	assert.Contains(t, text, "🔹 *IMEI 2:* No data")
	assert.Contains(t, text, "🔹 *Serial Number:* F2LXK0XXXXXX")
	assert.Contains(t, text, "🔹 *Repairs & Service Coverage:* No data")
	assert.True(t, strings.HasSuffix(text, "🔹 *SIM Lock:* Unlocked"))
	assert.Equal(t, len(reportLines), strings.Count(text, "🔹"))
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "plain", htmlToText("  plain "))
	assert.Equal(t, "a\nb", htmlToText("a<br/>b"))
	assert.Equal(t, "Tom & Jerry", htmlToText("Tom &amp; Jerry"))
}
