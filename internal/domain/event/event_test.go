package event

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

func TestType_IsValid(t *testing.T) {
	for _, typ := range []Type{TypeClaimSubmitted, TypeClaimDecided, TypeDocumentAttached} {
		assert.True(t, typ.IsValid(), typ)
	}
	assert.False(t, Type("instance.created").IsValid())
	assert.Equal(t, "claim.decided", TypeClaimDecided.String())
}

func TestNewEvent(t *testing.T) {
	a := NewEvent(TypeClaimSubmitted, 4, 2, nil)
	b := NewEvent(TypeClaimSubmitted, 4, 2, nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotNil(t, a.Payload)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, int64(4), a.ClaimID)
	assert.Equal(t, int64(2), a.ActorID)
}

func TestClaimEvents(t *testing.T) {
	claim, err := entity.NewClaim(3, decimal.NewFromInt(8), decimal.NewFromInt(450), "")
	require.NoError(t, err)
	claim.ID = 11

	submitted := ClaimSubmitted(claim, 3)
	assert.Equal(t, TypeClaimSubmitted, submitted.Type)
	assert.Equal(t, "PENDING", submitted.Get(KeyStatus))
	assert.Equal(t, "3600.00", submitted.Get(KeyTotalAmount))

	claim.Status = entity.StatusCoordinatorApproved
	decided := ClaimDecided(claim, entity.StatusPending, 9)
	assert.Equal(t, int64(9), decided.ActorID)
	assert.Equal(t, "PENDING", decided.Get(KeyPreviousStatus))
	assert.Equal(t, "COORDINATOR_APPROVED", decided.Get(KeyStatus))
}

func TestWithPayload_DoesNotMutate(t *testing.T) {
	original := NewEvent(TypeDocumentAttached, 1, 1, map[string]string{KeyFileName: "a.pdf"})
	updated := original.WithPayload(KeyDocumentID, "5")

	assert.Equal(t, "", original.Get(KeyDocumentID))
	assert.Equal(t, "5", updated.Get(KeyDocumentID))
	assert.Equal(t, "a.pdf", updated.Get(KeyFileName))
	assert.Equal(t, original.ID, updated.ID)
}
