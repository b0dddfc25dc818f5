package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryVocabulary(t *testing.T) {
	for _, c := range []TicketCategory{CategoryBilling, CategoryTechnical, CategoryAccount, CategoryGeneral} {
		assert.True(t, c.Valid(), string(c))
	}
	assert.False(t, TicketCategory("sales").Valid())
	assert.False(t, TicketCategory("").Valid())
	assert.False(t, TicketCategory("Billing").Valid())
}

func TestPriorityVocabulary(t *testing.T) {
	for _, p := range []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, TicketPriority("urgent").Valid())
	assert.False(t, TicketPriority("").Valid())
}

func TestStatusVocabulary(t *testing.T) {
	for _, s := range []TicketStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, TicketStatus("pending").Valid())
}
