package models

// ReviewDocument is a review record in the store's native form. The store
// assigns the document key; it is never part of the body.
type ReviewDocument struct {
	Name      string `json:"name"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Timestamp int64  `json:"timestamp"`
}

// CreateResult is the body returned by the document store after a push.
type CreateResult struct {
	Name string `json:"name"`
}
