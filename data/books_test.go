package data

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.Local)

func validForm() BookForm {
	return BookForm{
		Title:       "A",
		Author:      "B",
		ISBN:        "1234567890",
		Price:       "10",
		PublishDate: "2020-01-01",
	}
}

func TestCheckBook(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BookForm)
		field  string
		reason string
	}{
		{"valid", func(*BookForm) {}, "", ""},
		{"missing title", func(f *BookForm) { f.Title = "" }, FieldTitle, ReasonRequired},
		{"blank author", func(f *BookForm) { f.Author = "   " }, FieldAuthor, ReasonRequired},
		{"missing isbn", func(f *BookForm) { f.ISBN = "" }, FieldISBN, ReasonRequired},
		{"missing price", func(f *BookForm) { f.Price = "" }, FieldPrice, ReasonRequired},
		{"missing date", func(f *BookForm) { f.PublishDate = "\t" }, FieldPublishDate, ReasonRequired},
		{"short isbn", func(f *BookForm) { f.ISBN = "123" }, FieldISBN, ReasonISBN},
		{"long isbn", func(f *BookForm) { f.ISBN = "12345678901234567890" }, FieldISBN, ReasonISBN},
		{"isbn with letters", func(f *BookForm) { f.ISBN = "123456789X" }, FieldISBN, ReasonISBN},
		{"hyphenated isbn", func(f *BookForm) { f.ISBN = "978-3-16-148410-0" }, "", ""},
		{"isbn padded", func(f *BookForm) { f.ISBN = "  1234567890  " }, "", ""},
		{"negative price", func(f *BookForm) { f.Price = "-1" }, FieldPrice, ReasonPrice},
		{"text price", func(f *BookForm) { f.Price = "abc" }, FieldPrice, ReasonPrice},
		{"infinite price", func(f *BookForm) { f.Price = "Inf" }, FieldPrice, ReasonPrice},
		{"zero price", func(f *BookForm) { f.Price = "0" }, "", ""},
		{"decimal price", func(f *BookForm) { f.Price = "12.50" }, "", ""},
		{"future date", func(f *BookForm) { f.PublishDate = "2024-03-16" }, FieldPublishDate, ReasonFutureDate},
		{"today", func(f *BookForm) { f.PublishDate = "2024-03-15" }, "", ""},
		{"past", func(f *BookForm) { f.PublishDate = "1999-12-31" }, "", ""},
		{"unparseable date skipped", func(f *BookForm) { f.PublishDate = "someday" }, "", ""},
		{"slashed future date", func(f *BookForm) { f.PublishDate = "2999/01/01" }, FieldPublishDate, ReasonFutureDate},
		{"slashed past date", func(f *BookForm) { f.PublishDate = "2020/01/01" }, "", ""},
		{"rfc3339 future date", func(f *BookForm) { f.PublishDate = "2999-01-01T00:00:00Z" }, FieldPublishDate, ReasonFutureDate},
		{"isbn checked before price", func(f *BookForm) { f.ISBN = "1"; f.Price = "-5" }, FieldISBN, ReasonISBN},
		{"required checked before isbn", func(f *BookForm) { f.ISBN = "1"; f.Title = "" }, FieldTitle, ReasonRequired},
		{"price checked before date", func(f *BookForm) { f.Price = "x"; f.PublishDate = "2999-01-01" }, FieldPrice, ReasonPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := CheckBook(form, now)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
			assert.Equal(t, tt.reason, err.Error())
		})
	}
}

func TestCheckBookIsPure(t *testing.T) {
	form := validForm()
	form.Title = "  padded  "
	require.NoError(t, CheckBook(form, now))
	assert.Equal(t, "  padded  ", form.Title)
}

func TestBookTextHelpers(t *testing.T) {
	price := 10.0
	b := &Book{ID: 7, Title: "T", Author: "A", ISBN: "1234567890", Price: &price, PublishDate: "2020-01-01"}
	assert.Equal(t, "7", b.IDText())
	assert.Equal(t, "10", b.PriceText())
	assert.Equal(t, BookForm{Title: "T", Author: "A", ISBN: "1234567890", Price: "10", PublishDate: "2020-01-01"}, b.Form())

	empty := &Book{Title: "T"}
	assert.False(t, empty.HasID())
	assert.Equal(t, "", empty.IDText())
	assert.Equal(t, "", empty.PriceText())
}

func TestMidnight(t *testing.T) {
	m := Midnight(now)
	assert.Equal(t, 0, m.Hour())
	assert.Equal(t, 15, m.Day())
	assert.Equal(t, now.Location(), m.Location())
}

func TestBookUnmarshalNumericStrings(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":"12","title":"T","price":"9.50"}`), &b))
	assert.EqualValues(t, 12, b.ID)
	assert.Equal(t, "9.5", b.PriceText())
	assert.Equal(t, "T", b.Title)

	var odd Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":1.5,"price":"NaN","publishDate":"2020-01-01"}`), &odd))
	assert.False(t, odd.HasID())
	assert.Nil(t, odd.Price)
	assert.Equal(t, "2020-01-01", odd.PublishDate)

	var books []*Book
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"price":3},{"id":"2","price":"abc"}]`), &books))
	require.Len(t, books, 2)
	assert.Equal(t, "3", books[0].PriceText())
	assert.EqualValues(t, 2, books[1].ID)
	assert.Empty(t, books[1].PriceText())

	assert.Error(t, json.Unmarshal([]byte(`{"title":5}`), &b))
}

func TestParsePublishDateLayouts(t *testing.T) {
	for _, s := range []string{"2020-01-02", "2020/01/02"} {
		d, ok := ParsePublishDate(s, time.UTC)
		require.True(t, ok, s)
		assert.Equal(t, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC), d)
	}
	_, ok := ParsePublishDate("02.01.2020", time.UTC)
	assert.False(t, ok)
}
