// Package sieve enumerates primes with the sieve of Eratosthenes.
package sieve

// UpTo returns all primes in [2, n] in increasing order. n < 2 yields
// an empty slice; that is a defined edge case, not an error.
//
// Time O(n log log n), space O(n).
func UpTo(n int) []int {
	if n < 2 {
		return []int{}
	}

	composite := make([]bool, n+1)
	for p := 2; p*p <= n; p++ {
		if composite[p] {
			continue
		}
		for m := p * p; m <= n; m += p {
			composite[m] = true
		}
	}

	// pi(n) is slightly below n/(ln n - 1) for n >= 17; a loose
	// capacity guess avoids repeated growth without a second pass.
	primes := make([]int, 0, n/2)
	for i := 2; i <= n; i++ {
		if !composite[i] {
			primes = append(primes, i)
		}
	}
	return primes
}

// Count returns pi(n), the number of primes up to n.
func Count(n int) int {
	return len(UpTo(n))
}
