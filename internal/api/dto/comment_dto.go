package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// AttachmentPayload is an uploaded file as referenced from a message.
type AttachmentPayload struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	Type       string    `json:"type"`
	Size       int64     `json:"size" validate:"gte=0"`
	URL        string    `json:"url" validate:"required"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy int64     `json:"uploaded_by,omitempty"`
}

func (a AttachmentPayload) toDomain() domain.Attachment {
	return domain.Attachment{
		ID:         a.ID,
		Name:       a.Name,
		Type:       a.Type,
		Size:       a.Size,
		URL:        a.URL,
		UploadedAt: a.UploadedAt,
		UploadedBy: a.UploadedBy,
	}
}

// NewAttachmentPayload renders an attachment.
func NewAttachmentPayload(a domain.Attachment) AttachmentPayload {
	return AttachmentPayload{
		ID:         a.ID,
		Name:       a.Name,
		Type:       a.Type,
		Size:       a.Size,
		URL:        a.URL,
		UploadedAt: a.UploadedAt,
		UploadedBy: a.UploadedBy,
	}
}

func attachmentsToDomain(in []AttachmentPayload) []domain.Attachment {
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, a.toDomain())
	}
	return out
}

// CreateCommentRequest is an admin thread entry. The comments endpoint
// names the text "comment", the messages endpoint "message"; both are
// accepted.
type CreateCommentRequest struct {
	Comment     string              `json:"comment"`
	Message     string              `json:"message"`
	IsInternal  bool                `json:"is_internal"`
	Attachments []AttachmentPayload `json:"attachments" validate:"omitempty,max=10,dive"`
}

// ToInput maps the request to the service input.
func (r CreateCommentRequest) ToInput() service.CommentInput {
	body := r.Message
	if body == "" {
		body = r.Comment
	}
	return service.CommentInput{Body: body, IsInternal: r.IsInternal, Attachments: attachmentsToDomain(r.Attachments)}
}

// CustomerMessageRequest is a customer thread entry.
type CustomerMessageRequest struct {
	Message       string              `json:"message"`
	CustomerName  string              `json:"customer_name" validate:"max=255"`
	CustomerEmail string              `json:"customer_email" validate:"omitempty,email"`
	Attachments   []AttachmentPayload `json:"attachments" validate:"omitempty,max=10,dive"`
}

// ToInput maps the request to the service input.
func (r CustomerMessageRequest) ToInput() service.CustomerMessageInput {
	return service.CustomerMessageInput{
		Body:          r.Message,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Attachments:   attachmentsToDomain(r.Attachments),
	}
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID            int64               `json:"id"`
	TicketID      int64               `json:"ticket_id"`
	AdminID       *int64              `json:"admin_id"`
	AuthorType    domain.AuthorType   `json:"author_type"`
	Comment       string              `json:"comment"`
	Attachments   []AttachmentPayload `json:"attachments"`
	IsInternal    bool                `json:"is_internal"`
	CustomerName  *string             `json:"customer_name"`
	CustomerEmail *string             `json:"customer_email"`
	AdminName     *string             `json:"admin_name"`
	AdminEmail    *string             `json:"admin_email,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewCommentResponse renders a comment. Admin emails are only exposed when
// includeAdminEmail is set.
func NewCommentResponse(c domain.Comment, includeAdminEmail bool) CommentResponse {
	attachments := make([]AttachmentPayload, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		attachments = append(attachments, NewAttachmentPayload(a))
	}
	resp := CommentResponse{
		ID:            c.ID,
		TicketID:      c.TicketID,
		AdminID:       c.AdminID,
		AuthorType:    c.AuthorType,
		Comment:       c.Body,
		Attachments:   attachments,
		IsInternal:    c.IsInternal,
		CustomerName:  c.CustomerName,
		CustomerEmail: c.CustomerEmail,
		AdminName:     c.AdminName,
		CreatedAt:     c.CreatedAt,
	}
	if includeAdminEmail {
		resp.AdminEmail = c.AdminEmail
	}
	return resp
}

// NewCommentList renders a thread.
func NewCommentList(comments []domain.Comment, includeAdminEmail bool) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewCommentResponse(c, includeAdminEmail))
	}
	return out
}
