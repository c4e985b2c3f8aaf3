// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package cache memoizes the slow lookups made while diagnosing a target:
// forward resolution, reverse DNS and the source public IP
package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultExpire = 5 * time.Minute
	defaultPurge  = 30 * time.Second
)

// Kind namespaces cache keys so different lookups of the same string never collide
type Kind string

const (
	KindResolve    Kind = "resolve"
	KindReverseDNS Kind = "rdns"
	KindPublicIP   Kind = "public_ip"
)

// Cache is shared by every lookup in the process
var Cache = cache.New(defaultExpire, defaultPurge)

// Key builds the cache key for a lookup of id
func Key(kind Kind, id string) string {
	return string(kind) + "/" + id
}

// Lookup returns the cached value of kind for id, calling cb on a miss.
// Values live for the default expiration.
func Lookup[T any](kind Kind, id string, cb func() (T, error)) (T, error) {
	return LookupWithExpiration(kind, id, cb, cache.DefaultExpiration)
}

// LookupWithExpiration is Lookup with an explicit lifetime. Errors from cb are
// returned as is and never cached.
func LookupWithExpiration[T any](kind Kind, id string, cb func() (T, error), expire time.Duration) (T, error) {
	key := Key(kind, id)
	if x, found := Cache.Get(key); found {
		if v, ok := x.(T); ok {
			return v, nil
		}
	}

	res, err := cb()
	if err == nil {
		Cache.Set(key, res, expire)
	}
	return res, err
}
