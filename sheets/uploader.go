// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheets

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Detail"
)

// sheetsUploader writes through the Google Sheets API with a service
// account credentials file. The client is built once and reused.
type sheetsUploader struct {
	credentialsPath string

	mu  sync.Mutex
	svc *sheets.Service
}

func (u *sheetsUploader) service(ctx context.Context) (*sheets.Service, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.svc != nil {
		return u.svc, nil
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(u.credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to build sheets client: %w", err)
	}
	u.svc = svc
	return svc, nil
}

// Overwrite clears and rewrites the Summary and Detail tabs, creating
// them when the spreadsheet does not have them yet.
func (u *sheetsUploader) Overwrite(ctx context.Context, spreadsheetID string, summary, detail [][]any) error {
	svc, err := u.service(ctx)
	if err != nil {
		return err
	}

	if err := ensureTabs(ctx, svc, spreadsheetID, summarySheet, detailSheet); err != nil {
		return err
	}

	regions := []struct {
		tab  string
		rows [][]any
	}{
		{summarySheet, summary},
		{detailSheet, detail},
	}
	for _, region := range regions {
		_, err := svc.Spreadsheets.Values.
			Clear(spreadsheetID, region.tab, &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", region.tab, err)
		}

		values := make([][]interface{}, len(region.rows))
		for i, row := range region.rows {
			values[i] = row
		}
		_, err = svc.Spreadsheets.Values.
			Update(spreadsheetID, region.tab+"!A1", &sheets.ValueRange{Values: values}).
			ValueInputOption("RAW").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", region.tab, err)
		}
	}

	return nil
}

func ensureTabs(ctx context.Context, svc *sheets.Service, spreadsheetID string, titles ...string) error {
	spreadsheet, err := svc.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	existing := make(map[string]bool)
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			existing[sheet.Properties.Title] = true
		}
	}

	var requests []*sheets.Request
	for _, title := range titles {
		if !existing[title] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = svc.Spreadsheets.
		BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add sheet tabs: %w", err)
	}
	return nil
}
