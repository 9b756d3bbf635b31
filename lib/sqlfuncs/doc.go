// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlfuncs is the set of functions litehost installs on every
// connection by default:
//
//	double(x)          scalar: x*2 for integers and floats, NULL for NULL
//	sum_squares(x)     aggregate: sum of x*x over the group
//	moving_sum(x)      window: sum of x over the window frame
//	natural            collation: digit runs compare numerically
//
// [Register] adds all of them to a function registry.
package sqlfuncs
