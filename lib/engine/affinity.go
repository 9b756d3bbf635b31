// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strconv"
	"strings"
)

// NumericAffinity returns the type TEXT would convert to under
// numeric affinity: INTEGER for well-formed integers, REAL for other
// numbers, TEXT otherwise.
func NumericAffinity(text string) ValueType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return TypeText
	}
	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return TypeInteger
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return TypeFloat
	}
	return TypeText
}
