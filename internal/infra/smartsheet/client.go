// Package smartsheet is a small REST client for the Smartsheet API 2.0. It
// converts cells into sheet.Value at the boundary.
package smartsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gwind/medicoes/internal/sheet"
)

var ErrNotConfigured = errors.New("smartsheet token not configured")

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool { return c.token != "" }

type apiColumn struct {
	ID      int64    `json:"id"`
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type apiObjectValue struct {
	ObjectType string   `json:"objectType"`
	Values     []string `json:"values,omitempty"`
}

type apiCell struct {
	ColumnID     int64           `json:"columnId"`
	Value        any             `json:"value,omitempty"`
	DisplayValue string          `json:"displayValue,omitempty"`
	ObjectValue  *apiObjectValue `json:"objectValue,omitempty"`
}

type apiRow struct {
	ID       int64     `json:"id,omitempty"`
	ToBottom bool      `json:"toBottom,omitempty"`
	Cells    []apiCell `json:"cells"`
}

type apiSheet struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Columns []apiColumn `json:"columns"`
	Rows    []apiRow    `json:"rows"`
}

// GetSheet reads all columns and rows of a sheet.
func (c *Client) GetSheet(ctx context.Context, sheetID string) (*sheet.Sheet, error) {
	const op = "smartsheet.GetSheet"

	var raw apiSheet
	u := fmt.Sprintf("%s/sheets/%s?include=objectValue", c.baseURL, url.PathEscape(sheetID))
	if err := c.do(ctx, http.MethodGet, u, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, sheetID, err)
	}

	out := &sheet.Sheet{
		ID:      raw.ID,
		Name:    raw.Name,
		Columns: convertColumns(raw.Columns),
		Rows:    make([]sheet.Row, 0, len(raw.Rows)),
	}
	for _, r := range raw.Rows {
		row := sheet.Row{ID: r.ID, Cells: make([]sheet.Cell, 0, len(r.Cells))}
		for _, cell := range r.Cells {
			if v := cellValue(cell); v != nil {
				row.Cells = append(row.Cells, sheet.Cell{ColumnID: cell.ColumnID, Value: v})
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Columns reads the column definitions only.
func (c *Client) Columns(ctx context.Context, sheetID string) ([]sheet.Column, error) {
	var page struct {
		Data []apiColumn `json:"data"`
	}
	u := fmt.Sprintf("%s/sheets/%s/columns?includeAll=true", c.baseURL, url.PathEscape(sheetID))
	if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, fmt.Errorf("smartsheet.Columns %s: %w", sheetID, err)
	}
	return convertColumns(page.Data), nil
}

// AppendRow adds one row at the bottom of the sheet and returns its id.
func (c *Client) AppendRow(ctx context.Context, sheetID string, cells []sheet.CellWrite) (int64, error) {
	const op = "smartsheet.AppendRow"

	row := apiRow{ToBottom: true, Cells: make([]apiCell, 0, len(cells))}
	for _, cw := range cells {
		row.Cells = append(row.Cells, writeCell(cw))
	}

	var resp struct {
		Message string   `json:"message"`
		Result  []apiRow `json:"result"`
	}
	u := fmt.Sprintf("%s/sheets/%s/rows", c.baseURL, url.PathEscape(sheetID))
	if err := c.do(ctx, http.MethodPost, u, []apiRow{row}, &resp); err != nil {
		return 0, fmt.Errorf("%s %s: %w", op, sheetID, err)
	}
	if len(resp.Result) == 0 {
		return 0, fmt.Errorf("%s %s: empty result (%s)", op, sheetID, resp.Message)
	}
	return resp.Result[0].ID, nil
}

// Me returns the e-mail of the token owner; used as a connectivity check.
func (c *Client) Me(ctx context.Context) (string, error) {
	var me struct {
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/users/me", nil, &me); err != nil {
		return "", fmt.Errorf("smartsheet.Me: %w", err)
	}
	return me.Email, nil
}

func (c *Client) do(ctx context.Context, method, urlStr string, payload, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 50<<20)).Decode(out); err != nil {
		return fmt.Errorf("json decode error: %w", err)
	}
	return nil
}

func convertColumns(in []apiColumn) []sheet.Column {
	out := make([]sheet.Column, 0, len(in))
	for _, c := range in {
		out = append(out, sheet.Column{ID: c.ID, Index: c.Index, Title: c.Title, Type: c.Type, Options: c.Options})
	}
	return out
}

// cellValue picks objectValue.values, then value, then displayValue.
func cellValue(c apiCell) sheet.Value {
	if c.ObjectValue != nil && len(c.ObjectValue.Values) > 0 {
		return sheet.MultiSelectVal(c.ObjectValue.Values)
	}
	switch v := c.Value.(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return sheet.StringVal(v)
		}
	case float64:
		return sheet.NumberVal(v)
	case bool:
		return sheet.BoolVal(v)
	}
	if strings.TrimSpace(c.DisplayValue) != "" {
		return sheet.StringVal(c.DisplayValue)
	}
	return nil
}

func writeCell(cw sheet.CellWrite) apiCell {
	out := apiCell{ColumnID: cw.ColumnID}
	switch v := cw.Value.(type) {
	case sheet.MultiSelectVal:
		out.ObjectValue = &apiObjectValue{ObjectType: sheet.TypeMultiPicklist, Values: v}
	case sheet.StringVal:
		out.Value = string(v)
	case sheet.NumberVal:
		out.Value = float64(v)
	case sheet.BoolVal:
		out.Value = bool(v)
	}
	return out
}
