package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/set-night/imeicheck/internal/config"
	"github.com/set-night/imeicheck/internal/telegram"
)

// ImeiReport is the lookup API response with every value flattened to text.
type ImeiReport map[string]string

type ImeiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	checker    string
}

func NewImeiClient(baseURL, apiKey, checker string) *ImeiClient {
	return &ImeiClient{
		httpClient: &http.Client{Timeout: config.ImeiLookupTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		checker:    checker,
	}
}

func (c *ImeiClient) Lookup(ctx context.Context, imei string) (ImeiReport, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse lookup url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("checker", c.checker)
	q.Set("number", imei)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxLookupResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > config.MaxLookupResponseBytes {
		return nil, fmt.Errorf("lookup response exceeds %d bytes", config.MaxLookupResponseBytes)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	report := make(ImeiReport, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			report[k] = htmlToText(val)
		default:
			report[k] = fmt.Sprint(val)
		}
	}

	if msg := report["error"]; msg != "" {
		return nil, fmt.Errorf("lookup error: %s", msg)
	}
	return report, nil
}

var lineBreaks = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "<BR>", "\n")

// htmlToText flattens the HTML fragments some checkers put in values.
func htmlToText(s string) string {
	s = lineBreaks.Replace(s)
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

var reportLines = []struct {
	label string
	key   string
}{
	{"IMEI 1", "IMEI"},
	{"IMEI 2", "IMEI2"},
	{"MEID", "MEID"},
	{"Serial Number", "Serial Number"},
	{"Description", "Description"},
	{"Date of Purchase", "Date of purchase"},
	{"Repairs & Service Coverage", "Repairs & Service Coverage"},
	{"Is Replaced", "is replaced"},
	{"SIM Lock", "SIM Lock"},
}

const noData = "No data"

// FormatReport renders a report as a Markdown message.
func FormatReport(r ImeiReport) string {
	var sb strings.Builder
	sb.WriteString("📱 *IMEI Information:*\n")
	for _, line := range reportLines {
		v := noData
		if r[line.key] != "" {
			v = telegram.EscapeMarkdown(r[line.key])
		}
		fmt.Fprintf(&sb, "\n🔹 *%s:* %s", line.label, v)
	}
	return sb.String()
}
