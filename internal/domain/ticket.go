package domain

import "time"

// TicketCategory classifies the subject matter of a ticket.
type TicketCategory string

const (
	CategoryBilling   TicketCategory = "billing"
	CategoryTechnical TicketCategory = "technical"
	CategoryAccount   TicketCategory = "account"
	CategoryGeneral   TicketCategory = "general"
)

// Valid reports whether the category belongs to the closed vocabulary.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryBilling, CategoryTechnical, CategoryAccount, CategoryGeneral:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority belongs to the closed vocabulary.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// Valid reports whether the status belongs to the closed vocabulary.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Ticket is the persisted support request record.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketStats aggregates counts over the whole store.
type TicketStats struct {
	TotalTickets      int64            `json:"total_tickets"`
	OpenTickets       int64            `json:"open_tickets"`
	AvgTicketsPerDay  float64          `json:"avg_tickets_per_day"`
	PriorityBreakdown map[string]int64 `json:"priority_breakdown"`
	CategoryBreakdown map[string]int64 `json:"category_breakdown"`
}

// Suggestion is an ephemeral classification result. A field outside its
// closed vocabulary is nil; the pair is never persisted.
type Suggestion struct {
	Category *string `json:"suggested_category"`
	Priority *string `json:"suggested_priority"`
}
