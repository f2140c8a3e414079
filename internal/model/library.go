package model

// Library represents a named collection of book references owned by a user.
// BookIDs is a set: a given book appears at most once. Libraries hold
// non-owning references; deleting a library never touches its books.
type Library struct {
	ID          ID     `json:"_id"`
	OwnerID     ID     `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	BookIDs     []ID   `json:"book_ids"`
}

// Contains reports whether the library already references bookID.
func (l *Library) Contains(bookID ID) bool {
	for _, id := range l.BookIDs {
		if id == bookID {
			return true
		}
	}
	return false
}
