package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/ticketdesk/internal/domain"
)

func TestBuildListQueryNoFilters(t *testing.T) {
	query, args := buildListQuery(TicketFilter{})

	assert.Contains(t, query, "WHERE 1=1")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Empty(t, args)
}

func TestBuildListQueryAllFilters(t *testing.T) {
	category := domain.CategoryBilling
	priority := domain.PriorityHigh
	status := domain.StatusOpen
	search := "Crash"

	query, args := buildListQuery(TicketFilter{
		Category: &category,
		Priority: &priority,
		Status:   &status,
		Search:   &search,
	})

	assert.Contains(t, query, "category=$1")
	assert.Contains(t, query, "priority=$2")
	assert.Contains(t, query, "status=$3")
	assert.Contains(t, query, "(LOWER(title) LIKE $4 OR LOWER(description) LIKE $4)")
	require.Len(t, args, 4)
	assert.Equal(t, domain.CategoryBilling, args[0])
	assert.Equal(t, "%crash%", args[3])
}

func TestBuildListQuerySearchOnly(t *testing.T) {
	search := "  login  "
	query, args := buildListQuery(TicketFilter{Search: &search})

	assert.Contains(t, query, "(LOWER(title) LIKE $1 OR LOWER(description) LIKE $1)")
	require.Len(t, args, 1)
	assert.Equal(t, "%login%", args[0])
}

func TestBuildListQueryBlankSearchIgnored(t *testing.T) {
	search := "   "
	query, args := buildListQuery(TicketFilter{Search: &search})

	assert.NotContains(t, query, "LIKE")
	assert.Empty(t, args)
}

func TestRoundOneDecimal(t *testing.T) {
	assert.Equal(t, 1.5, roundOneDecimal(1.5))
	assert.Equal(t, 1.3, roundOneDecimal(4.0/3.0))
	assert.Equal(t, 1.7, roundOneDecimal(5.0/3.0))
	assert.Equal(t, 0.0, roundOneDecimal(0))
}
