// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec encodes diagnostics snapshots as deterministic CBOR.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 section
// 4.2): map keys are sorted and integers use their shortest form, so
// two snapshots with equal contents are byte-identical and can be
// compared or hashed directly. Struct fields tagged with `keyasint`
// are encoded with integer keys.
//
// [Diagnose] renders encoded bytes in CBOR diagnostic notation for the
// stats command.
package codec
