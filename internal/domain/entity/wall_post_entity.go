package entity

import "time"

// WallPost is a message left by AuthorID on RecipientID's wall.
// Date is supplied by the client; listings are ordered by it.
type WallPost struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	RecipientID string    `json:"recipient"`
	Text        string    `json:"text"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// WallPostView is a wall post with its author expanded.
// Author is nil when the author record no longer exists.
type WallPostView struct {
	ID          string      `json:"id"`
	Author      *PublicUser `json:"author"`
	RecipientID string      `json:"recipient"`
	Text        string      `json:"text"`
	Date        time.Time   `json:"date"`
	CreatedAt   time.Time   `json:"created_at"`
}

// View builds the expanded representation of p with the given author.
func (p *WallPost) View(author *PublicUser) *WallPostView {
	return &WallPostView{
		ID:          p.ID,
		Author:      author,
		RecipientID: p.RecipientID,
		Text:        p.Text,
		Date:        p.Date,
		CreatedAt:   p.CreatedAt,
	}
}
