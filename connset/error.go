// Copyright (c) 2024 The libbitcoin-network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connset

import "errors"

// ErrAddressInUse is returned by Store when a channel for the given
// endpoint is already present in the set.
var ErrAddressInUse = errors.New("address in use")
