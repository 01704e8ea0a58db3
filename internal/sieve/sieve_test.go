package sieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpTo30(t *testing.T) {
	want := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	assert.Equal(t, want, UpTo(30))
}

func TestUpToSmallEdges(t *testing.T) {
	assert.Empty(t, UpTo(1))
	assert.Empty(t, UpTo(0))
	assert.Empty(t, UpTo(-7))
	assert.Equal(t, []int{2}, UpTo(2))
	assert.Equal(t, []int{2, 3}, UpTo(3))
}

func TestUpToBoundaryInclusive(t *testing.T) {
	// 29 is prime and must be included when n = 29 exactly.
	primes := UpTo(29)
	assert.Equal(t, 29, primes[len(primes)-1])
}

func TestCountMatchesKnownPi(t *testing.T) {
	// pi(10^k) reference values.
	assert.Equal(t, 4, Count(10))
	assert.Equal(t, 25, Count(100))
	assert.Equal(t, 168, Count(1000))
	assert.Equal(t, 1229, Count(10000))
	assert.Equal(t, 9592, Count(100000))
}

func TestNoComposites(t *testing.T) {
	for _, p := range UpTo(500) {
		for d := 2; d*d <= p; d++ {
			assert.NotZero(t, p%d, "%d is composite", p)
		}
	}
}
