// Package listing renders stored bills as a table.
package listing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"billtrack/internal/dto"

	"github.com/olekukonko/tablewriter"
)

var header = []string{"Title", "Amount", "Date", "Created", "URL"}

// Source lists bills with their download URLs.
type Source interface {
	ListBills(ctx context.Context) ([]dto.BillWithURLResponse, error)
}

type View struct {
	source Source
}

func NewView(source Source) *View {
	return &View{source: source}
}

// Render fetches all bills and writes them to w, newest first. A non-empty
// filter keeps only bills whose title contains it, ignoring case.
func (v *View) Render(ctx context.Context, w io.Writer, filter string) (int, error) {
	bills, err := v.source.ListBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list bills: %w", err)
	}

	bills = Filter(bills, filter)
	if len(bills) == 0 {
		_, err := fmt.Fprintln(w, "No bills found.")
		return 0, err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, b := range bills {
		table.Append(Row(b))
	}
	table.Render()

	return len(bills), nil
}

// Filter returns the bills whose title contains q, case-insensitively.
func Filter(bills []dto.BillWithURLResponse, q string) []dto.BillWithURLResponse {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return bills
	}
	out := make([]dto.BillWithURLResponse, 0, len(bills))
	for _, b := range bills {
		if strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out
}

// Row formats one bill as table cells.
func Row(b dto.BillWithURLResponse) []string {
	created := b.CreatedAt
	if t, err := time.Parse(time.RFC3339, b.CreatedAt); err == nil {
		created = t.Local().Format("2006-01-02 15:04")
	}
	url := b.S3URL
	if url == "" {
		url = "-"
	}
	return []string{
		b.Title,
		fmt.Sprintf("%.2f", b.Amount),
		b.Date,
		created,
		url,
	}
}
