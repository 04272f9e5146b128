package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIdentifier(t *testing.T) {
	valid := []string{"*", "id", "product.id", "id, name, price", "a_b_c"}
	for _, s := range valid {
		assert.True(t, isValidIdentifier(s), s)
	}

	invalid := []string{"id; DROP TABLE product", "name'--", "id)", "a.b.c"}
	for _, s := range invalid {
		assert.False(t, isValidIdentifier(s), s)
	}
}

func TestIsValidOrder(t *testing.T) {
	assert.True(t, isValidOrder("id ASC"))
	assert.True(t, isValidOrder("id desc"))
	assert.True(t, isValidOrder("created_at DESC, id ASC"))
	assert.True(t, isValidOrder("id"))

	assert.False(t, isValidOrder("id ASC; DROP TABLE x"))
	assert.False(t, isValidOrder("id ASC extra"))
	assert.False(t, isValidOrder("id SIDEWAYS"))
}

func TestIsValidRelation(t *testing.T) {
	assert.True(t, isValidRelation("LEFT JOIN order_item ON order_item.pid = product.id"))
	assert.True(t, isValidRelation("INNER JOIN t ON t.a = b.a"))

	assert.False(t, isValidRelation(""))
	assert.False(t, isValidRelation("LEFT JOIN order_item"))
	assert.False(t, isValidRelation("order_item ON a = b"))
}
