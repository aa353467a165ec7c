package dto

import "github.com/emzola/bookform/data"

// BookRequestBody defines the body of create and update calls to the book API.
// It never carries an id: ids belong to the API.
type BookRequestBody struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	ISBN        string  `json:"isbn"`
	Price       float64 `json:"price"`
	PublishDate string  `json:"publishDate"`
}

// NewBookRequestBody builds a request body from a form that has already passed
// data.CheckBook.
func NewBookRequestBody(form data.BookForm) BookRequestBody {
	f := form.Trimmed()
	price, _ := data.ParsePrice(f.Price)
	return BookRequestBody{
		Title:       f.Title,
		Author:      f.Author,
		ISBN:        f.ISBN,
		Price:       price,
		PublishDate: f.PublishDate,
	}
}
