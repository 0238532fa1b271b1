package domain

import "time"

// AuthorType indicates who wrote a comment.
type AuthorType string

const (
	AuthorTypeCustomer AuthorType = "customer"
	AuthorTypeAdmin    AuthorType = "admin"
	AuthorTypeSystem   AuthorType = "system"
)

// Comment is one entry of a ticket's append-only message thread.
type Comment struct {
	ID            int64
	TicketID      int64
	AdminID       *int64
	AuthorType    AuthorType
	Body          string
	Attachments   []Attachment
	IsInternal    bool
	CustomerName  *string
	CustomerEmail *string
	CreatedAt     time.Time

	// Read-only, populated by joins.
	AdminName  *string
	AdminEmail *string
}

// Attachment is an uploaded file embedded in a comment.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy int64     `json:"uploaded_by,omitempty"`
}
