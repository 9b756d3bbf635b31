// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import "strings"

// FunctionFlags are passed to the engine when creating a function.
// The low nibble selects the text encoding; the remaining bits match
// the engine's SQLITE_DETERMINISTIC family of flags.
type FunctionFlags uint32

const (
	FlagNone          FunctionFlags = 0x0
	FlagUTF8          FunctionFlags = 0x1
	FlagUTF16LE       FunctionFlags = 0x2
	FlagUTF16BE       FunctionFlags = 0x3
	FlagUTF16         FunctionFlags = 0x4
	FlagAny           FunctionFlags = 0x5
	FlagUTF16Aligned  FunctionFlags = 0x8
	FlagEncodingMask  FunctionFlags = 0xF
	FlagDeterministic FunctionFlags = 0x800
	FlagDirectOnly    FunctionFlags = 0x80000
	FlagSubType       FunctionFlags = 0x100000
	FlagInnocuous     FunctionFlags = 0x200000
)

// Encoding returns only the encoding bits.
func (f FunctionFlags) Encoding() FunctionFlags { return f & FlagEncodingMask }

// Has reports whether every bit of other is set in f. Encoding values
// are not bit flags and must be compared through [FunctionFlags.Encoding].
func (f FunctionFlags) Has(other FunctionFlags) bool { return f&other == other }

func (f FunctionFlags) String() string {
	var parts []string
	switch f.Encoding() {
	case FlagUTF8:
		parts = append(parts, "UTF8")
	case FlagUTF16LE:
		parts = append(parts, "UTF16LE")
	case FlagUTF16BE:
		parts = append(parts, "UTF16BE")
	case FlagUTF16:
		parts = append(parts, "UTF16")
	case FlagAny:
		parts = append(parts, "ANY")
	case FlagUTF16Aligned:
		parts = append(parts, "UTF16_ALIGNED")
	}
	if f.Has(FlagDeterministic) {
		parts = append(parts, "DETERMINISTIC")
	}
	if f.Has(FlagDirectOnly) {
		parts = append(parts, "DIRECTONLY")
	}
	if f.Has(FlagSubType) {
		parts = append(parts, "SUBTYPE")
	}
	if f.Has(FlagInnocuous) {
		parts = append(parts, "INNOCUOUS")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}
