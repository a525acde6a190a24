package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finanzas/internal/cache"
	"finanzas/internal/log"
	ports "finanzas/internal/sheets"
)

const lastColumn = "J"

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile; with neither set the standard
// GOOGLE_APPLICATION_CREDENTIALS file is used.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors transactions into one sheet. Row positions of known ids are
// cached; a stale position is detected by re-reading the id cell.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	rows          *cache.LRUCache[int]
}

var _ ports.TransactionMirror = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Transactions"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		rows:          cache.NewLRUCache[int](10000, 30*time.Minute),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// EnsureHeader writes the header row when the first cell is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:%s1", c.sheetName, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	header := make([]interface{}, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Upsert implements ports.TransactionMirror.
func (c *Client) Upsert(ctx context.Context, row ports.Row) error {
	if row.ID == "" {
		return errors.New("row without id")
	}

	n, err := c.findRow(ctx, row.ID)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{row.Values()}}

	if n > 0 {
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheetName, n), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			c.rows.Delete(row.ID)
			return fmt.Errorf("update row %d: %w", n, err)
		}
		slog.DebugContext(ctx, "Sheet row updated", log.FieldTransactionID, row.ID, log.FieldSheetRow, n)
		return nil
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:%s", c.sheetName, lastColumn), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	if resp.Updates != nil {
		if n, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			c.rows.Set(row.ID, n)
		}
	}
	slog.DebugContext(ctx, "Sheet row appended", log.FieldTransactionID, row.ID)
	return nil
}

// findRow returns the 1-based row holding id, or 0. A cached position is
// trusted only if the id cell still matches.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	if n, ok := c.rows.Get(id); ok {
		rng := fmt.Sprintf("%s!A%d", c.sheetName, n)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err == nil && cellAt(resp.Values, 0) == id {
			return n, nil
		}
		c.rows.Delete(id)
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read id column: %w", err)
	}
	found := 0
	for i := range resp.Values {
		cell := cellAt(resp.Values, i)
		if cell == "" {
			continue
		}
		c.rows.Set(cell, i+1)
		if cell == id {
			found = i + 1
		}
	}
	return found, nil
}

// ForgetRows drops every cached row position.
func (c *Client) ForgetRows() {
	c.rows.Purge()
}

func cellAt(values [][]interface{}, i int) string {
	if i >= len(values) || len(values[i]) == 0 {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(values[i][0]))
}

func rowRange(sheet string, n int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, n, lastColumn, n)
}

// rowFromRange extracts the first row number from an A1 range such as
// "Transactions!A12:J12".
func rowFromRange(a1 string) (int, bool) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZ$")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
