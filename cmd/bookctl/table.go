package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/emzola/bookform/data"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderBooks lays out books one per row. Missing ids and prices are blank.
func renderBooks(books []*data.Book) string {
	rows := make([][]string, 0, len(books))
	for _, b := range books {
		rows = append(rows, []string{b.IDText(), b.Title, b.Author, b.ISBN, b.PriceText(), b.PublishDate})
	}
	return renderTable(
		[]string{"ID", "Title", "Author", "ISBN", "Price", "Published"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// renderForm lays out the five editable fields of a record.
func renderForm(form data.BookForm) string {
	return renderTable(
		[]string{"Field", "Value"},
		[][]string{
			{data.FieldTitle, form.Title},
			{data.FieldAuthor, form.Author},
			{data.FieldISBN, form.ISBN},
			{data.FieldPrice, form.Price},
			{data.FieldPublishDate, form.PublishDate},
		},
		nil,
	)
}
