package domain

// Book is a catalog entry with a pool of interchangeable copies.
// Invariant: 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              string
	Title           string
	TotalCopies     int
	AvailableCopies int
}

func (b Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}
