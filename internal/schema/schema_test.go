package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexedColumnsExist(t *testing.T) {
	for _, c := range Indexed {
		assert.True(t, IsColumn(c), c)
	}
	assert.False(t, IsColumn("amount; DROP TABLE tranx_history"))
}
