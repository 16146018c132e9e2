package util

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.Wrapf(err, "could not create %v", dir)
	}
	return nil
}

// GetKeys returns the keys of m in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

// Tail returns a copy of the last n elements of s (all of s when shorter).
func Tail[A any](s []A, n int) []A {
	if n < 0 {
		n = 0
	}
	start := len(s) - Min(n, len(s))
	res := make([]A, len(s)-start)
	copy(res, s[start:])
	return res
}

// PushBounded appends v and drops the oldest elements beyond max.
func PushBounded[A any](s []A, v A, max int) []A {
	s = append(s, v)
	if max > 0 && len(s) > max {
		s = append(s[:0:0], s[len(s)-max:]...)
	}
	return s
}

// Distinct keeps the first occurrence of every element, preserving order.
func Distinct[A comparable](s []A) []A {
	seen := make(map[A]bool, len(s))
	var res []A
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}
	return res
}
