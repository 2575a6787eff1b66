// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellSubscribeReplaysCurrentValue(t *testing.T) {
	c := NewCell(false)

	var first []bool
	c.Subscribe(func(v bool) { first = append(first, v) })
	assert.Equal(t, []bool{false}, first, "subscribe should replay the initial value")

	// no Set between the two subscriptions
	var second []bool
	c.Subscribe(func(v bool) { second = append(second, v) })
	assert.Equal(t, []bool{false}, second, "a late subscriber should still get the latest value")
	assert.Equal(t, []bool{false}, first, "existing subscribers are not notified by a new subscription")
}

func TestCellSetNotifiesInRegistrationOrder(t *testing.T) {
	c := NewCell(0)

	var order []string
	c.Subscribe(func(v int) {
		if v != 0 {
			order = append(order, "a")
		}
	})
	c.Subscribe(func(v int) {
		if v != 0 {
			order = append(order, "b")
		}
	})
	c.Subscribe(func(v int) {
		if v != 0 {
			order = append(order, "c")
		}
	})

	c.Set(1)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 1, c.Get())
}

func TestCellDisposeStopsNotifications(t *testing.T) {
	c := NewCell("")

	var got []string
	d := c.Subscribe(func(v string) { got = append(got, v) })
	c.Set("one")
	d.Dispose()
	d.Dispose()
	c.Set("two")

	assert.Equal(t, []string{"", "one"}, got)
	assert.Equal(t, 0, c.Subscribers())
}

func TestCellDisposeSelfDuringDispatch(t *testing.T) {
	c := NewCell(0)

	var a, b []int
	var da Disposable
	da = c.Subscribe(func(v int) {
		a = append(a, v)
		if v == 1 {
			da.Dispose()
		}
	})
	c.Subscribe(func(v int) { b = append(b, v) })

	require.NotPanics(t, func() { c.Set(1) })
	c.Set(2)

	assert.Equal(t, []int{0, 1}, a, "self-disposed subscriber should see nothing after disposal")
	assert.Equal(t, []int{0, 1, 2}, b, "other subscribers must not be skipped")
}

func TestCellDisposeOtherDuringDispatch(t *testing.T) {
	c := NewCell(0)

	var b, third []int
	var db Disposable
	c.Subscribe(func(v int) {
		if v == 1 {
			db.Dispose()
		}
	})
	db = c.Subscribe(func(v int) { b = append(b, v) })
	c.Subscribe(func(v int) { third = append(third, v) })

	c.Set(1)

	assert.Equal(t, []int{0}, b, "a subscriber removed mid-dispatch is not invoked later in that dispatch")
	assert.Equal(t, []int{0, 1}, third, "subscribers after the removed one still run")
}

func TestCellNestedSetSupersedesDispatch(t *testing.T) {
	c := NewCell(0)

	var late []int
	c.Subscribe(func(v int) {
		if v == 1 {
			c.Set(2)
		}
	})
	c.Subscribe(func(v int) { late = append(late, v) })

	c.Set(1)

	assert.Equal(t, 2, c.Get())
	assert.Equal(t, []int{0, 2}, late, "no subscriber should receive a value older than one it has seen")
}

func TestSetDistinct(t *testing.T) {
	c := NewCell(false)

	var got []bool
	c.Subscribe(func(v bool) { got = append(got, v) })

	SetDistinct(c, false)
	SetDistinct(c, true)
	SetDistinct(c, true)

	assert.Equal(t, []bool{false, true}, got)
}

func TestBagDisposesAll(t *testing.T) {
	a := NewCell(0)
	b := NewCell("")

	var bag Bag
	bag.Add(a.Subscribe(func(int) {}))
	bag.Add(b.Subscribe(func(string) {}))
	require.Equal(t, 1, a.Subscribers())
	require.Equal(t, 1, b.Subscribers())

	bag.Dispose()
	assert.Equal(t, 0, a.Subscribers())
	assert.Equal(t, 0, b.Subscribers())
}
