package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, DaysUntil(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), now))
	assert.Equal(t, 1, DaysUntil(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 3, DaysUntil(time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -1, DaysUntil(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), now))
	assert.Equal(t, -5, DaysUntil(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), now))
}

func TestToneFor(t *testing.T) {
	tests := []struct {
		name           string
		reminderNumber int
		daysUntil      int
		want           string
	}{
		{"first reminder, far deadline", 1, 5, ToneFriendly},
		{"first reminder, two days out", 1, 2, ToneFriendly},
		{"first reminder, one day out", 1, 1, ToneFirm},
		{"first reminder, due today", 1, 0, ToneFirm},
		{"second reminder, far deadline", 2, 7, ToneFirm},
		{"third reminder", 3, 5, ToneFirm},
		{"fourth reminder", 4, 5, ToneUrgent},
		{"tenth reminder", 10, 5, ToneUrgent},
		{"past deadline beats friendly", 1, -1, ToneEscalation},
		{"past deadline beats urgent", 6, -2, ToneEscalation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToneFor(tt.reminderNumber, tt.daysUntil))
		})
	}
}

// A task reminded three times with two days left: the fourth reminder is
// urgent, not firm.
func TestToneProgression(t *testing.T) {
	reminderCount := 3
	assert.Equal(t, ToneUrgent, ToneFor(reminderCount+1, 2))
}
