package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/ticketdesk/internal/domain"
	"github.com/helpdesk-io/ticketdesk/internal/events"
	"github.com/helpdesk-io/ticketdesk/internal/repository"
	apperrors "github.com/helpdesk-io/ticketdesk/pkg/util/errorutil"
)

type memoryTicketRepo struct {
	tickets map[string]domain.Ticket
	stats   *domain.TicketStats
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *memoryTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memoryTicketRepo) List(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

func (r *memoryTicketRepo) Stats(_ context.Context) (*domain.TicketStats, error) {
	if r.stats == nil {
		return nil, errors.New("no stats configured")
	}
	return r.stats, nil
}

func newTestService(repo repository.TicketRepository) *TicketService {
	return NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
}

func TestCreateTicketAppliesDefaults(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := newTestService(repo)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "Cannot log in",
		Description: "password reset loop",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, domain.CategoryGeneral, ticket.Category)
	assert.Equal(t, domain.PriorityMedium, ticket.Priority)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
}

func TestCreateTicketRequiresTitleAndDescription(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "   "})

	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "description")
}

func TestCreateTicketRejectsUnknownPriority(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "t",
		Description: "d",
		Priority:    domain.TicketPriority("urgent"),
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Contains(t, domainErr.Details, "priority")
}

func TestUpdateTicketNotFound(t *testing.T) {
	svc := newTestService(newMemoryTicketRepo())

	status := domain.StatusClosed
	_, err := svc.UpdateTicket(context.Background(), "missing-id", TicketPatch{Status: &status})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestUpdateTicketPartialMergePreservesFields(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := newTestService(repo)

	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "Invoice is wrong",
		Description: "charged twice",
		Category:    domain.CategoryBilling,
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)

	status := domain.StatusResolved
	updated, err := svc.UpdateTicket(context.Background(), created.ID, TicketPatch{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.Equal(t, "Invoice is wrong", updated.Title)
	assert.Equal(t, "charged twice", updated.Description)
	assert.Equal(t, domain.CategoryBilling, updated.Category)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
}

func TestUpdateTicketRejectsBadCategory(t *testing.T) {
	repo := newMemoryTicketRepo()
	svc := newTestService(repo)

	created, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "t",
		Description: "d",
	})
	require.NoError(t, err)

	category := domain.TicketCategory("sales")
	_, err = svc.UpdateTicket(context.Background(), created.ID, TicketPatch{Category: &category})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestStatsPassThroughWithoutCache(t *testing.T) {
	repo := newMemoryTicketRepo()
	repo.stats = &domain.TicketStats{
		TotalTickets:      3,
		OpenTickets:       2,
		AvgTicketsPerDay:  1.5,
		PriorityBreakdown: map[string]int64{"high": 2, "low": 1},
		CategoryBreakdown: map[string]int64{"technical": 3},
	}
	svc := newTestService(repo)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalTickets)
	assert.Equal(t, 1.5, stats.AvgTicketsPerDay)
	assert.Equal(t, int64(2), stats.PriorityBreakdown["high"])
}

func TestCreateTicketPublishesEvent(t *testing.T) {
	repo := newMemoryTicketRepo()
	dispatcher := events.NewInMemoryDispatcher()
	var received []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	svc := NewTicketService(TicketDependencies{TicketRepo: repo, Dispatcher: dispatcher})

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "t", Description: "d"})

	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, ticket.ID, received[0].TicketID)
	assert.Equal(t, events.EventTicketCreated, received[0].Type)
}
