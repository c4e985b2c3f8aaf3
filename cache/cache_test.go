// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name         string
		kind         Kind
		id           string
		preSeedCache func()
		callback     func() (string, error)
		wantValue    string
		wantErr      bool
		shouldCache  bool
	}{
		{
			name: "miss - resolves and caches",
			kind: KindResolve,
			id:   "southcitycomputer.com",
			callback: func() (string, error) {
				return "203.0.113.10", nil
			},
			wantValue:   "203.0.113.10",
			shouldCache: true,
		},
		{
			name: "miss - error is not cached",
			kind: KindReverseDNS,
			id:   "10.0.0.1",
			callback: func() (string, error) {
				return "", errors.New("no PTR record")
			},
			wantErr:     true,
			shouldCache: false,
		},
		{
			name: "hit - callback not invoked",
			kind: KindResolve,
			id:   "example.com",
			preSeedCache: func() {
				Cache.Set(Key(KindResolve, "example.com"), "93.184.216.34", cache.NoExpiration)
			},
			callback: func() (string, error) {
				t.Fatal("callback should not be called on cache hit")
				return "", nil
			},
			wantValue:   "93.184.216.34",
			shouldCache: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Cache.Flush()
			if tt.preSeedCache != nil {
				tt.preSeedCache()
			}

			got, err := Lookup(tt.kind, tt.id, tt.callback)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantValue, got)

			cached, found := Cache.Get(Key(tt.kind, tt.id))
			assert.Equal(t, tt.shouldCache, found)
			if tt.shouldCache {
				assert.Equal(t, tt.wantValue, cached)
			}
		})
	}
}

func TestLookup_KindsDoNotCollide(t *testing.T) {
	Cache.Flush()

	fwd, err := Lookup(KindResolve, "1.1.1.1", func() (string, error) { return "1.1.1.1", nil })
	require.NoError(t, err)
	rev, err := Lookup(KindReverseDNS, "1.1.1.1", func() (string, error) { return "one.one.one.one", nil })
	require.NoError(t, err)

	assert.Equal(t, "1.1.1.1", fwd)
	assert.Equal(t, "one.one.one.one", rev)
}

func TestLookup_TypeMismatchRecomputes(t *testing.T) {
	Cache.Flush()
	Cache.Set(Key(KindPublicIP, "v4"), 42, cache.NoExpiration)

	got, err := Lookup(KindPublicIP, "v4", func() (string, error) { return "198.51.100.7", nil })
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", got)
}

func TestLookupWithExpiration(t *testing.T) {
	Cache.Flush()

	calls := 0
	cb := func() (int, error) {
		calls++
		return 123, nil
	}

	got, err := LookupWithExpiration(KindResolve, "short-lived", cb, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 123, got)

	_, err = LookupWithExpiration(KindResolve, "short-lived", cb, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	time.Sleep(150 * time.Millisecond)
	_, found := Cache.Get(Key(KindResolve, "short-lived"))
	assert.False(t, found, "value should have expired from cache")
}
