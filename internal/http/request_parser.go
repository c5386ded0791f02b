// Package http serves the expense dashboard.
//
// This file turns request data into domain values: form drafts, filter
// criteria and record ids.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"expensetracker/internal/core"
)

const maxFormBytes = 64 << 10

// Filter query and form keys.
const (
	paramCategory = "category"
	paramMonth    = "month"
	paramYear     = "year"
	paramFrom     = "from"
	paramTo       = "to"
)

var filterParams = []string{paramCategory, paramMonth, paramYear, paramFrom, paramTo}

// ParseFilters reads filter criteria from query or form values. ok is false
// when none of the filter keys is present at all.
func ParseFilters(values url.Values) (f core.FilterCriteria, ok bool) {
	for _, k := range filterParams {
		if _, present := values[k]; present {
			ok = true
		}
	}
	f = core.FilterCriteria{
		Category: sanitizeInput(values.Get(paramCategory)),
		Month:    sanitizeInput(values.Get(paramMonth)),
		Year:     sanitizeInput(values.Get(paramYear)),
		DateFrom: sanitizeInput(values.Get(paramFrom)),
		DateTo:   sanitizeInput(values.Get(paramTo)),
	}
	return f.Normalize(), ok
}

// ParseDraft builds a form draft from a submission. Values are kept as
// typed so that a rejected draft can be shown back unchanged.
func ParseDraft(p *RequestBodyParser) core.Draft {
	return core.Draft{
		Date:        p.Get("date"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
	}
}

// recordID reads the {id} route variable.
func recordID(r *http.Request) (core.RecordID, error) {
	return core.ParseID(mux.Vars(r)["id"])
}

// RequestBodyParser reads a body once and serves values from it whether it
// was sent as JSON or form-encoded, the way HTMX and API clients differ.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
	if p.err == nil && len(p.body) > maxFormBytes {
		p.err = errors.New("request body too large")
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitised value from whichever encoding was parsed.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values exposes the parsed data as url.Values.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		return p.formData
	}
	out := url.Values{}
	for k, v := range p.jsonData {
		out.Set(k, stringValue(v))
	}
	return out
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims and drops control characters except tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
