package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

func TestPickLeastBooked(t *testing.T) {
	workers := []models.Worker{{ID: 4}, {ID: 2}, {ID: 9}}
	counts := map[uint]int{4: 3, 2: 1, 9: 5}

	picked, err := PickLeastBooked(workers, counts)
	require.NoError(t, err)
	assert.Equal(t, uint(2), picked.ID)
}

func TestPickLeastBookedTieBreaksOnLowestID(t *testing.T) {
	workers := []models.Worker{{ID: 9}, {ID: 2}, {ID: 4}}
	counts := map[uint]int{9: 2, 2: 2, 4: 2}

	picked, err := PickLeastBooked(workers, counts)
	require.NoError(t, err)
	assert.Equal(t, uint(2), picked.ID)
}

func TestPickLeastBookedMissingCountsMeanZero(t *testing.T) {
	workers := []models.Worker{{ID: 1}, {ID: 2}}

	picked, err := PickLeastBooked(workers, map[uint]int{1: 4})
	require.NoError(t, err)
	assert.Equal(t, uint(2), picked.ID)
}

func TestPickLeastBookedEmpty(t *testing.T) {
	_, err := PickLeastBooked(nil, nil)
	assert.True(t, httperr.IsBusiness(err, "no_workers_available"))
}
