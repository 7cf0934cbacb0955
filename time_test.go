package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock(t *testing.T) {
	clock := FixedClock(testNow)
	assert.Equal(t, testNow, clock())
	assert.Equal(t, testNow.Unix(), clock.unix())
}

func TestNilClockUsesSystemTime(t *testing.T) {
	var clock Clock
	before := time.Now().Unix()
	got := clock.unix()

	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, time.Now().Unix())
}

func TestNumericDateIgnoresLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	newYork := time.FixedZone("EST", -5*60*60)

	assert.Equal(t, testNow.Unix(), NumericDate(testNow.In(time.UTC)))
	assert.Equal(t, NumericDate(testNow.In(tokyo)), NumericDate(testNow.In(newYork)))
}

func TestExpirationAcrossTimezones(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	exp := NumericDate(testNow.In(tokyo).Add(time.Minute))

	b := NewBuilder(WithBuilderClock(FixedClock(testNow.In(time.UTC))))
	assert.NoError(t, b.SetExpiration(exp).Err())
}
