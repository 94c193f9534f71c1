// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
)

// ErrUnknownMessage is returned when a heading names a command this
// package has no decoder for.
var ErrUnknownMessage = errors.New("unknown message command")

// MessageError describes an issue encoding or decoding a wire message. It
// satisfies the error interface and holds the name of the function that
// spotted the problem, matching the reference client's diagnostic style.
type MessageError struct {
	Func        string
	Description string
}

func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%s: %s", e.Func, e.Description)
	}
	return e.Description
}

func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}
