package output

import (
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"ReadLater/internal/domain"
)

const maxTitleWidth = 60

// Table buffers rows and renders them borderless.
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a table writing to w.
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	return &Table{table: table, header: headers}
}

// AddRow appends a row.
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render writes the table.
func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

// ItemsTable renders saved items, one per row.
func (p *Printer) ItemsTable(items []domain.SavedItem) error {
	t := NewTable(p.out, []string{"ID", "Status", "Title", "Tags", "Created"})
	for _, item := range items {
		t.AddRow([]string{
			item.ID,
			p.StatusBadge(item.Status),
			truncate(titleOf(item), maxTitleWidth),
			strings.Join(item.Tags, ", "),
			item.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return t.Render()
}

// SearchTable renders web search results.
func (p *Printer) SearchTable(results []domain.SearchResult) error {
	t := NewTable(p.out, []string{"Title", "URL"})
	for _, r := range results {
		t.AddRow([]string{truncate(r.Title, maxTitleWidth), r.URL})
	}
	return t.Render()
}

func titleOf(item domain.SavedItem) string {
	if item.Title != nil && *item.Title != "" {
		return *item.Title
	}
	return item.URL
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
