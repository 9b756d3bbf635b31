// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlfuncs

import (
	"strings"

	"github.com/bureau-foundation/litehost/lib/function"
)

// Natural orders strings so that embedded numbers compare by value:
// "file2" sorts before "file10". Leading zeros are ignored except as a
// tiebreak.
type Natural struct{}

func (Natural) Declarations() []function.Descriptor {
	return []function.Descriptor{{Name: "natural", Kind: function.KindCollation}}
}

func (Natural) Compare(left, right string) (int, error) {
	return naturalCompare(left, right), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			runA, restA := splitDigits(a)
			runB, restB := splitDigits(b)
			if c := compareDigitRuns(runA, runB); c != 0 {
				return c
			}
			a, b = restA, restB
			continue
		}
		if a[0] != b[0] {
			if a[0] < b[0] {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func splitDigits(s string) (run, rest string) {
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	return s[:end], s[end:]
}

func compareDigitRuns(a, b string) int {
	trimmedA := strings.TrimLeft(a, "0")
	trimmedB := strings.TrimLeft(b, "0")
	if len(trimmedA) != len(trimmedB) {
		if len(trimmedA) < len(trimmedB) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(trimmedA, trimmedB); c != 0 {
		return c
	}
	// Equal values: fewer leading zeros first.
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}
