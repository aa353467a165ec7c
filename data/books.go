package data

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/emzola/bookform/internal/validator"
)

// Form field names, shared by the HTML form and the CLI flags.
const (
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldISBN        = "isbn"
	FieldPrice       = "price"
	FieldPublishDate = "publishDate"
)

// Validation reasons reported to the user.
const (
	ReasonRequired    = "all fields required"
	ReasonISBN        = "invalid ISBN format"
	ReasonPrice       = "price must be a non-negative number"
	ReasonFutureDate  = "publish date cannot be in the future"
	publishDateLayout = "2006-01-02"
)

var publishDateLayouts = []string{publishDateLayout, "2006/01/02"}

// Book defines a book record as exchanged with the book API.
// ID is assigned by the API and is zero until the record is persisted.
type Book struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Price       *float64 `json:"price,omitempty"`
	PublishDate string   `json:"publishDate"`
}

// UnmarshalJSON accepts id and price as JSON numbers or numeric strings.
// An id that is not a whole number decodes as absent, as does a price that is
// not a finite number.
func (b *Book) UnmarshalJSON(p []byte) error {
	type plain Book
	aux := struct {
		*plain
		ID    json.RawMessage `json:"id"`
		Price json.RawMessage `json:"price"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(p, &aux); err != nil {
		return err
	}

	b.ID = 0
	if s, ok := numberText(aux.ID); ok {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			b.ID = id
		}
	}
	b.Price = nil
	if s, ok := numberText(aux.Price); ok {
		if price, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(price) && !math.IsInf(price, 0) {
			b.Price = &price
		}
	}
	return nil
}

// numberText returns the text of a JSON number, or the content of a JSON
// string. Null and other values report false.
func numberText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), true
	}
	return "", false
}

// HasID reports whether the API has assigned an identifier.
func (b *Book) HasID() bool {
	return b.ID > 0
}

// IDText returns the identifier as text, or "" when absent.
func (b *Book) IDText() string {
	if !b.HasID() {
		return ""
	}
	return strconv.FormatInt(b.ID, 10)
}

// PriceText returns the price in its shortest decimal form, or "" when absent.
func (b *Book) PriceText() string {
	if b.Price == nil {
		return ""
	}
	return strconv.FormatFloat(*b.Price, 'f', -1, 64)
}

// Form returns the editable fields of b as form values.
func (b *Book) Form() BookForm {
	return BookForm{
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Price:       b.PriceText(),
		PublishDate: b.PublishDate,
	}
}

// BookForm holds the five editable fields exactly as the user entered them.
type BookForm struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Price       string `json:"price"`
	PublishDate string `json:"publishDate"`
}

// Trimmed returns a copy of f with surrounding whitespace removed from every field.
func (f BookForm) Trimmed() BookForm {
	return BookForm{
		Title:       strings.TrimSpace(f.Title),
		Author:      strings.TrimSpace(f.Author),
		ISBN:        strings.TrimSpace(f.ISBN),
		Price:       strings.TrimSpace(f.Price),
		PublishDate: strings.TrimSpace(f.PublishDate),
	}
}

// IsZero reports whether every field is empty.
func (f BookForm) IsZero() bool {
	return f == BookForm{}
}

// ValidationError is a local rejection of a book form. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateBook runs the book form checks in order. Only the first failure is
// meaningful; later checks still run but are reported behind it.
func ValidateBook(v *validator.Validator, form BookForm, now time.Time) {
	f := form.Trimmed()

	fields := []struct{ key, value string }{
		{FieldTitle, f.Title},
		{FieldAuthor, f.Author},
		{FieldISBN, f.ISBN},
		{FieldPrice, f.Price},
		{FieldPublishDate, f.PublishDate},
	}
	for _, field := range fields {
		if field.value == "" {
			v.AddError(field.key, ReasonRequired)
			return
		}
	}

	v.Check(validator.Matches(f.ISBN, validator.ISBNRX), FieldISBN, ReasonISBN)

	_, ok := ParsePrice(f.Price)
	v.Check(ok, FieldPrice, ReasonPrice)

	// An unparseable date is let through here; see DESIGN.md.
	if date, ok := ParsePublishDate(f.PublishDate, now.Location()); ok {
		v.Check(!date.After(Midnight(now)), FieldPublishDate, ReasonFutureDate)
	}
}

// CheckBook validates form against the calendar day of now and returns the
// first failure as a *ValidationError, or nil.
func CheckBook(form BookForm, now time.Time) error {
	v := validator.New()
	if ValidateBook(v, form, now); !v.Valid() {
		field, reason, _ := v.First()
		return &ValidationError{Field: field, Reason: reason}
	}
	return nil
}

// ParsePrice parses s as a finite, non-negative number.
func ParsePrice(s string) (float64, bool) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, false
	}
	return p, true
}

// ParsePublishDate accepts a calendar date (2006-01-02 or 2006/01/02)
// interpreted in loc, or a full RFC 3339 timestamp.
func ParsePublishDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range publishDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
