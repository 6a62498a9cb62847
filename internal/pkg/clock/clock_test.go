package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	taipei := time.FixedZone("UTC+8", 8*60*60)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Date(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC)))
	// 02:00 on the 2nd in UTC+8 is still the 1st in UTC
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Date(time.Date(2024, 3, 2, 2, 0, 0, 0, taipei)))
}

func TestFake(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f := NewFake(start)
	assert.Equal(t, start, f.Now())

	f.Advance(47 * time.Hour)
	assert.Equal(t, start.Add(47*time.Hour), f.Now())

	f.Set(time.Date(2030, 1, 1, 8, 0, 0, 0, time.FixedZone("UTC+8", 8*60*60)))
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), f.Now())
}

func TestSystemIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, System{}.Now().Location())
}
