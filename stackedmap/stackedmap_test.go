// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liquefy/liquefy/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["base"] = "from-src"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	// reads fall through to src
	v, ok, err := sm.Get("base")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-src", v)

	d0 := sm.Push()
	sm.Put("a", "1")
	sm.Put("base", "overridden")

	v, ok, _ = sm.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	v, _, _ = sm.Get("base")
	assert.Equal(t, "overridden", v)

	sm.Push()
	sm.Put("a", "2")
	v, _, _ = sm.Get("a")
	assert.Equal(t, "2", v)

	// pop reverts puts since last push
	sm.Pop()
	v, _, _ = sm.Get("a")
	assert.Equal(t, "1", v)

	// pop to base depth reverts everything
	sm.PopTo(d0)
	_, ok, _ = sm.Get("a")
	assert.False(t, ok)
	v, _, _ = sm.Get("base")
	assert.Equal(t, "from-src", v)
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("k1", "v1")
	sm.Push()
	sm.Put("k2", "v2")
	sm.Put("k1", "v3")

	var keys, values []string
	sm.Journal(func(k, v any) bool {
		keys = append(keys, k.(string))
		values = append(values, v.(string))
		return true
	})

	assert.Equal(t, []string{"k1", "k2", "k1"}, keys)
	assert.Equal(t, []string{"v1", "v2", "v3"}, values)
}
