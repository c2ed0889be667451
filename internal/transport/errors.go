// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import "errors"

// Transport error sentinels, per the taxonomy in spec.md §7.
var (
	ErrPeerUnreachable     = errors.New("transport: peer unreachable")
	ErrTopicSubscribeFailed = errors.New("transport: topic subscribe failed")
	ErrDHTKeyNotFound      = errors.New("transport: dht key not found")
)
