package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputOption makes Sheets parse dates and numbers as if typed by a user.
const valueInputOption = "USER_ENTERED"

// SheetsSink appends rows to a Google spreadsheet using a service account.
// The API client is built on first use so missing credentials surface as
// append failures rather than startup failures.
type SheetsSink struct {
	spreadsheetID string
	rangeName     string
	credentials   func() ([]byte, error)
	clientOptions []option.ClientOption

	mu  sync.Mutex
	svc *sheets.Service
}

// SheetsOption configures a SheetsSink.
type SheetsOption func(*SheetsSink)

// WithCredentialsJSON uses an inline service account key.
func WithCredentialsJSON(data string) SheetsOption {
	return func(s *SheetsSink) {
		if data == "" {
			return
		}
		s.credentials = func() ([]byte, error) { return []byte(data), nil }
	}
}

// WithCredentialsFile reads the service account key from path on first use.
func WithCredentialsFile(path string) SheetsOption {
	return func(s *SheetsSink) {
		if path == "" {
			return
		}
		s.credentials = func() ([]byte, error) { return os.ReadFile(path) }
	}
}

// WithClientOptions passes extra options to the Sheets client. When set, no
// service account key is required (e.g. option.WithoutAuthentication in tests).
func WithClientOptions(opts ...option.ClientOption) SheetsOption {
	return func(s *SheetsSink) { s.clientOptions = append(s.clientOptions, opts...) }
}

// NewSheetsSink creates a sink appending to rangeName of spreadsheetID.
func NewSheetsSink(spreadsheetID, rangeName string, opts ...SheetsOption) *SheetsSink {
	s := &SheetsSink{
		spreadsheetID: spreadsheetID,
		rangeName:     rangeName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append implements Sink.
func (s *SheetsSink) Append(ctx context.Context, row []string) (int, error) {
	if err := checkWidth(row); err != nil {
		return 0, err
	}

	svc, err := s.service(ctx)
	if err != nil {
		return 0, err
	}

	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}

	resp, err := svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.rangeName, &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("sheets append: %w", err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return int(resp.Updates.UpdatedCells), nil
}

func (s *SheetsSink) service(ctx context.Context) (*sheets.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}
	if s.spreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is empty: %w", ErrNotConfigured)
	}

	opts := append([]option.ClientOption(nil), s.clientOptions...)
	if len(opts) == 0 {
		if s.credentials == nil {
			return nil, fmt.Errorf("sheets: no service account credentials: %w", ErrNotConfigured)
		}
		key, err := s.credentials()
		if err != nil {
			return nil, fmt.Errorf("sheets: read credentials: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("sheets: parse credentials: %w", err)
		}
		// The client outlives the request that first needed it.
		opts = append(opts, option.WithTokenSource(jwt.TokenSource(context.Background())))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create client: %w", err)
	}
	s.svc = svc
	return svc, nil
}
