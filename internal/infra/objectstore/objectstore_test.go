package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "example/11111111-1111-1111-1111-111111111111.txt",
		ObjectName("example", "11111111-1111-1111-1111-111111111111"))
}

func TestObjectName_EmptySource(t *testing.T) {
	assert.Equal(t, "/uuid.txt", ObjectName("", "uuid"))
}
