package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeSleepAdvancesAndRecords(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var calls []int
	c.OnSleep = func(n int) { calls = append(calls, n) }

	c.Sleep(30 * time.Millisecond)
	c.Sleep(30 * time.Millisecond)
	c.Advance(time.Second)

	assert.Equal(t, start.Add(1060*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{30 * time.Millisecond, 30 * time.Millisecond}, c.Sleeps())
	assert.Equal(t, []int{1, 2}, calls)
}

func TestSleepsReturnsCopy(t *testing.T) {
	c := NewFake(time.Time{})
	c.Sleep(time.Millisecond)
	s := c.Sleeps()
	s[0] = time.Hour
	assert.Equal(t, time.Millisecond, c.Sleeps()[0])
}
