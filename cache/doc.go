// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache keeps computed resolutions of ended parties in Redis so
// repeated result reads skip the scoring queries. An ended party's
// resolution never changes, so entries only expire or get dropped when the
// party is deleted. Without a Redis URL the Nop cache is used.
package cache
