// Package sheets implements the tabular store port on top of the
// Google Sheets API. One spreadsheet holds all collections, one
// worksheet per collection, header in row 1. That is the layout existing
// deployments already use.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"shop-agent/internal/store"
)

// Client is a Store backed by a single Google spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New builds a Client authenticating with a service account key file.
func New(ctx context.Context, spreadsheetID, credentialsFile string) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id not set")
	}
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) EnsureCollection(ctx context.Context, name string, header []string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: add sheet %s: %w", name, err)
	}

	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	headerRange := fmt.Sprintf("'%s'!A1:%s1", name, columnLetter(len(header)-1))
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: write header for %s: %w", name, err)
	}
	return nil
}

func (c *Client) AppendRow(ctx context.Context, collection string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{values}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoted(collection), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append to %s: %w", collection, err)
	}
	return nil
}

func (c *Client) ReadAll(ctx context.Context, collection string) ([]store.Record, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoted(collection)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", collection, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("sheets: %s has no header: %w", collection, store.ErrCollectionNotFound)
	}

	header := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		header[i] = fmt.Sprint(v)
	}

	records := make([]store.Record, 0, len(resp.Values)-1)
	for i, row := range resp.Values[1:] {
		fields := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				fields[col] = fmt.Sprint(row[j])
			} else {
				fields[col] = ""
			}
		}
		records = append(records, store.Record{Row: i + 1, Fields: fields})
	}
	return records, nil
}

func (c *Client) UpdateCell(ctx context.Context, collection string, row int, column, value string) error {
	header := store.Headers[collection]
	col := -1
	for j, h := range header {
		if h == column {
			col = j
			break
		}
	}
	if col < 0 {
		return fmt.Errorf("sheets: unknown column %q in %s", column, collection)
	}

	// Data row 1 lives in sheet row 2; the header occupies row 1.
	cell := fmt.Sprintf("'%s'!%s%d", collection, columnLetter(col), row+1)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, cell, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", cell, err)
	}
	return nil
}

func quoted(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a 0-based column index to A1 notation (0 -> A,
// 25 -> Z, 26 -> AA).
func columnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
