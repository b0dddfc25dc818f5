package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-io/ticketdesk/internal/domain"
	"github.com/helpdesk-io/ticketdesk/internal/events"
	"github.com/helpdesk-io/ticketdesk/internal/persistence"
	"github.com/helpdesk-io/ticketdesk/internal/repository"
	apperrors "github.com/helpdesk-io/ticketdesk/pkg/util/errorutil"
)

const statsCacheKey = "tickets:stats"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
	statsTTL   time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Cache      *persistence.Redis
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	StatsTTL   time.Duration
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
}

// TicketPatch carries the fields of a partial update; nil fields are
// left untouched.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		statsTTL:   deps.StatsTTL,
	}
}

// ListTickets returns tickets matching every supplied filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// CreateTicket validates and persists a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      input.Status,
	}
	if ticket.Category == "" {
		ticket.Category = domain.CategoryGeneral
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}
	if ticket.Status == "" {
		ticket.Status = domain.StatusOpen
	}

	details := map[string]any{}
	if ticket.Title == "" {
		details["title"] = "required"
	}
	if ticket.Description == "" {
		details["description"] = "required"
	}
	if !ticket.Category.Valid() {
		details["category"] = "must be one of billing, technical, account, general"
	}
	if !ticket.Priority.Valid() {
		details["priority"] = "must be one of low, medium, high, critical"
	}
	if !ticket.Status.Valid() {
		details["status"] = "must be one of open, in_progress, resolved, closed"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket fields", details)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Category: ticket.Category,
			Priority: ticket.Priority,
			Status:   ticket.Status,
		},
	})
	return ticket, nil
}

// UpdateTicket merges the patch into an existing ticket and persists it.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	updated := []string{}
	details := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			details["title"] = "required"
		}
		ticket.Title = title
		updated = append(updated, "title")
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			details["description"] = "required"
		}
		ticket.Description = description
		updated = append(updated, "description")
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			details["category"] = "must be one of billing, technical, account, general"
		}
		ticket.Category = *patch.Category
		updated = append(updated, "category")
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			details["priority"] = "must be one of low, medium, high, critical"
		}
		ticket.Priority = *patch.Priority
		updated = append(updated, "priority")
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			details["status"] = "must be one of open, in_progress, resolved, closed"
		}
		ticket.Status = *patch.Status
		updated = append(updated, "status")
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid ticket fields", details)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	s.invalidateStats(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload: events.TicketUpdatedPayload{
			UpdatedFields: updated,
			Status:        ticket.Status,
		},
	})
	return ticket, nil
}

// Stats returns store-wide aggregates, served from the Redis cache when
// a fresh copy exists.
func (s *TicketService) Stats(ctx context.Context) (*domain.TicketStats, error) {
	if cached := s.cachedStats(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, err
	}
	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *TicketService) cachedStats(ctx context.Context) *domain.TicketStats {
	if s.cache == nil || s.cache.Client == nil || s.statsTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats domain.TicketStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *TicketService) storeStats(ctx context.Context, stats *domain.TicketStats) {
	if s.cache == nil || s.cache.Client == nil || s.statsTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, statsCacheKey, raw, s.statsTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}

func (s *TicketService) invalidateStats(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}
