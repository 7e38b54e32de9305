package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayOutOfRange(t *testing.T) {
	_, err := Display(-1)
	assert.Error(t, err)

	_, err = Display(1 << 10)
	assert.Error(t, err)
}
