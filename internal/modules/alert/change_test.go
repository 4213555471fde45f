package alert

import (
	"testing"

	"vehiclerent/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectStatusChange(t *testing.T) {
	c, ok := DetectStatusChange(domain.BookingPending, domain.BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, Change{From: domain.BookingPending, To: domain.BookingConfirmed}, c)

	_, ok = DetectStatusChange(domain.BookingConfirmed, domain.BookingConfirmed)
	assert.False(t, ok)

	_, ok = DetectStatusChange(domain.BookingConfirmed, "")
	assert.False(t, ok)
}

func TestStatusAlert_UsesCodeOrID(t *testing.T) {
	id := uuid.MustParse("6f1c2a44-5d7e-4c1b-9d53-0f3b7f0b9a10")
	change := Change{From: domain.BookingPending, To: domain.BookingConfirmed}

	withCode := StatusAlert(&domain.Booking{ID: id, BookingCode: "BOOK-20250301-000007", CustomerID: 3, VehicleID: 9}, change)
	assert.Equal(t, "Booking BOOK-20250301-000007 status changed from 'pending' to 'confirmed'", withCode.Message)
	assert.Equal(t, id, *withCode.BookingID)
	assert.Equal(t, int64(3), *withCode.CustomerID)
	assert.Equal(t, int64(9), *withCode.VehicleID)

	withoutCode := StatusAlert(&domain.Booking{ID: id}, change)
	assert.Equal(t, "Booking "+id.String()+" status changed from 'pending' to 'confirmed'", withoutCode.Message)
}
