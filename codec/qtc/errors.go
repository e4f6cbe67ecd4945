/*
DESCRIPTION
  errors.go defines the error taxonomy shared by the bit buffer, range
  coder, tile cache and quadtree codec.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package qtc

import "errors"

// Sentinel errors returned (possibly wrapped with github.com/pkg/errors for
// additional context and a stack trace) by this package's operations.
var (
	// ErrTruncated indicates an input stream ended before the declared
	// symbol, pixel, or bit count was reached.
	ErrTruncated = errors.New("qtc: truncated input")

	// ErrDecodeError indicates the range coder's frequency search ran off
	// the end of the table; this means the model used by the decoder does
	// not match the one used by the encoder, or the input is corrupt.
	ErrDecodeError = errors.New("qtc: range decode error")

	// ErrInvalidIndex indicates a tile cache index referenced a slot that
	// is out of range or not yet present.
	ErrInvalidIndex = errors.New("qtc: invalid cache index")

	// ErrInvalidParameter indicates a caller supplied an invalid
	// configuration value (negative order, non-power-of-two minsize,
	// bits not in {1, 8}, and so on).
	ErrInvalidParameter = errors.New("qtc: invalid parameter")
)
