package dto

import (
	"time"

	"github.com/helpdesk-io/ticketdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"omitempty,oneof=billing technical account general"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
}

// UpdateTicketRequest payload; absent fields leave the record untouched.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

// ClassifyRequest payload.
type ClassifyRequest struct {
	Description string `json:"description"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromTicket maps the domain record onto the wire shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    string(ticket.Category),
		Priority:    string(ticket.Priority),
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
