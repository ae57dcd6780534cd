package db

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/tordrt/tabrecon/internal/config"
	"github.com/tordrt/tabrecon/internal/record"
	"github.com/tordrt/tabrecon/internal/schema"
)

// RESTStore implements Store against a PostgREST-style table API such as
// Supabase's /rest/v1. There is no metadata endpoint in play: everything goes
// through row selects and inserts.
type RESTStore struct {
	client *resty.Client
	schema string
}

// restError is the JSON error body PostgREST returns.
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
	Details string `json:"details"`
}

// NewRESTStore creates a REST-backed Store from cfg. Requests are never
// retried.
func NewRESTStore(cfg config.StoreConfig) (*RESTStore, error) {
	base, err := restBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	c := resty.New().
		SetBaseURL(base).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.HTTPTimeout > 0 {
		c.SetTimeout(cfg.HTTPTimeout)
	}
	if cfg.APIKey != "" {
		c.SetHeader("apikey", cfg.APIKey)
		c.SetAuthToken(cfg.APIKey)
	}

	return &RESTStore{client: c, schema: cfg.RESTSchema}, nil
}

// restBaseURL validates raw and appends /rest/v1 to bare Supabase project URLs.
func restBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid REST URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid REST URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid REST URL: missing host")
	}
	if u.Path == "" && strings.HasSuffix(u.Hostname(), ".supabase.co") {
		u.Path = "/rest/v1"
	}
	return u.String(), nil
}

// Select implements Store
func (s *RESTStore) Select(ctx context.Context, table string, q Query) (*ResultSet, error) {
	profile, name := s.split(table)

	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	for _, f := range q.Filters {
		params.Add(f.Column, "eq."+f.Value)
	}
	if q.MaxRows > 0 {
		params.Set("limit", strconv.Itoa(q.MaxRows))
	}

	req := s.client.R().SetContext(ctx).SetQueryParamsFromValues(params)
	if profile != "" {
		req.SetHeader("Accept-Profile", profile)
	}
	if q.ExactCount {
		req.SetHeader("Prefer", "count=exact")
	}

	resp, err := req.Get("/" + url.PathEscape(name))
	if err != nil {
		return nil, &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		return nil, classifyREST(resp.StatusCode(), resp.Body())
	}

	rs := &ResultSet{}
	if err := decodeRows(resp.Body(), &rs.Rows); err != nil {
		return nil, &schema.Error{Kind: schema.KindQuery, Message: fmt.Sprintf("failed to decode rows: %v", err), Err: err}
	}
	if len(rs.Rows) > 0 {
		cols, err := firstObjectKeys(resp.Body())
		if err != nil || len(cols) == 0 {
			cols = rowColumns(rs.Rows[0])
		}
		rs.Columns = cols
	}
	if q.ExactCount {
		rs.Count = parseContentRange(resp.Header().Get("Content-Range"))
	}
	return rs, nil
}

// Insert implements Store
func (s *RESTStore) Insert(ctx context.Context, table string, rec record.Raw) error {
	profile, name := s.split(table)

	req := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(map[string]any(rec))
	if profile != "" {
		req.SetHeader("Content-Profile", profile)
	}

	resp, err := req.Post("/" + url.PathEscape(name))
	if err != nil {
		return &schema.Error{Kind: schema.KindTransport, Message: err.Error(), Err: err}
	}
	if resp.IsError() {
		return classifyREST(resp.StatusCode(), resp.Body())
	}
	return nil
}

// Close implements Store
func (s *RESTStore) Close(_ context.Context) error {
	return nil
}

// split resolves "schema.table" into a profile header value and a table name.
func (s *RESTStore) split(table string) (profile, name string) {
	parts := splitQualified(table)
	switch len(parts) {
	case 0:
		return s.schema, table
	case 1:
		return s.schema, parts[0]
	default:
		return parts[len(parts)-2], parts[len(parts)-1]
	}
}

func classifyREST(status int, body []byte) error {
	var re restError
	if err := json.Unmarshal(body, &re); err != nil || (re.Message == "" && re.Code == "") {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		re = restError{Message: fmt.Sprintf("HTTP %d: %s", status, snippet)}
	}

	kind := schema.KindQuery
	switch {
	case re.Code == "42P01", re.Code == "PGRST205", re.Code == "PGRST106":
		// undefined table, table missing from schema cache, schema not exposed
		kind = schema.KindNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = schema.KindTransport
	case status == http.StatusNotFound && re.Code == "":
		kind = schema.KindNotFound
	case status >= 500:
		kind = schema.KindTransport
	}

	return &schema.Error{
		Kind:    kind,
		Code:    re.Code,
		Message: re.Message,
		Hint:    re.Hint,
		Details: re.Details,
	}
}

func decodeRows(body []byte, dest *[]record.Raw) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return err
	}
	for _, r := range rows {
		*dest = append(*dest, record.Raw(r))
	}
	return nil
}

// firstObjectKeys returns the keys of the first object in a JSON array in
// document order.
func firstObjectKeys(body []byte) ([]string, error) {
	dec := stdjson.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != stdjson.Delim('[') {
		return nil, errors.New("expected JSON array")
	}
	if tok, err := dec.Token(); err != nil || tok != stdjson.Delim('{') {
		return nil, errors.New("expected JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected object key")
		}
		keys = append(keys, key)

		var skip stdjson.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// parseContentRange reads the total from "0-9/42" or "*/0". An unknown
// total ("0-9/*") yields nil.
func parseContentRange(h string) *int {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(h[i+1:]))
	if err != nil {
		return nil
	}
	return &n
}
