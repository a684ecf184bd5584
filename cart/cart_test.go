package cart

import (
	"testing"

	"github.com/sierra-health/medequip-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lamp  = models.Product{ID: "p1", Name: "Slit Lamp", Price: 1000}
	lens  = models.Product{ID: "p2", Name: "Lens", Price: 25.5}
	meter = models.Product{ID: "p3", Name: "Tonometer", Price: 300}
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		actions  []Action
		expected []models.OrderItem
	}{
		{
			name:     "add defaults quantity to one",
			actions:  []Action{Add(lamp, 0)},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 1}},
		},
		{
			name:     "add merges existing product",
			actions:  []Action{Add(lamp, 2), Add(lens, 1), Add(lamp, 3)},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 5}, {ProductID: "p2", Quantity: 1}},
		},
		{
			name:     "remove keeps order of the rest",
			actions:  []Action{Add(lamp, 1), Add(lens, 1), Add(meter, 1), Remove("p2")},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p3", Quantity: 1}},
		},
		{
			name:     "remove unknown product is a no-op",
			actions:  []Action{Add(lamp, 1), Remove("nope")},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 1}},
		},
		{
			name:     "update quantity sets absolute value",
			actions:  []Action{Add(lamp, 4), UpdateQuantity("p1", 2)},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 2}},
		},
		{
			name:     "update quantity to zero removes",
			actions:  []Action{Add(lamp, 4), Add(lens, 1), UpdateQuantity("p1", 0)},
			expected: []models.OrderItem{{ProductID: "p2", Quantity: 1}},
		},
		{
			name:     "update quantity of missing product is a no-op",
			actions:  []Action{UpdateQuantity("p1", 3)},
			expected: []models.OrderItem{},
		},
		{
			name:     "clear empties the cart",
			actions:  []Action{Add(lamp, 1), Add(lens, 2), Clear()},
			expected: []models.OrderItem{},
		},
		{
			name:     "unknown action is ignored",
			actions:  []Action{Add(lamp, 1), {Type: "checkout"}},
			expected: []models.OrderItem{{ProductID: "p1", Quantity: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			for _, a := range tt.actions {
				c = Reduce(c, a)
			}
			assert.Equal(t, tt.expected, c.Lines())
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := Reduce(Cart{}, Add(lamp, 1))
	after := Reduce(before, Add(lamp, 1))
	_ = Reduce(after, UpdateQuantity("p1", 9))

	assert.Equal(t, 1, before.TotalQuantity())
	assert.Equal(t, 2, after.TotalQuantity())
}

func TestTotals(t *testing.T) {
	c := Reduce(Reduce(Cart{}, Add(lamp, 2)), Add(lens, 2))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 4, c.TotalQuantity())
	assert.InDelta(t, 2051.0, c.Subtotal(), 0.001)
}

func TestStorageRoundTrip(t *testing.T) {
	c := Reduce(Reduce(Cart{}, Add(lamp, 2)), Add(lens, 1))

	data, err := c.MarshalStorage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"_id":"p1"`)
	assert.Contains(t, string(data), `"quantity":2`)
	assert.Contains(t, string(data), `"name":"Slit Lamp"`)

	decoded, err := UnmarshalStorage(data)
	require.NoError(t, err)
	assert.Equal(t, c.Items(), decoded.Items())
}

func TestUnmarshalStorageNormalizes(t *testing.T) {
	data := []byte(`[
		{"_id":"p1","name":"Slit Lamp","price":1000,"quantity":1},
		{"_id":"p2","name":"Lens","quantity":0},
		{"_id":"p1","name":"Slit Lamp","price":1000,"quantity":2}
	]`)

	c, err := UnmarshalStorage(data)
	require.NoError(t, err)
	assert.Equal(t, []models.OrderItem{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 1},
	}, c.Lines())
}

func TestUnmarshalStorageErrors(t *testing.T) {
	_, err := UnmarshalStorage([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	_, err = UnmarshalStorage([]byte(`[{"name":"no id","quantity":1}]`))
	assert.Error(t, err)
}
