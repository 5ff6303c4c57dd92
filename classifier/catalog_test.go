package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveModelKnown(t *testing.T) {
	for _, name := range []string{"resnet18", "resnet50", "resnet101", "mobilenetv2"} {
		v := ResolveModel(name)
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.File)
		assert.NotEmpty(t, v.URL)
	}
}

func TestResolveModelFallback(t *testing.T) {
	assert.Equal(t, DefaultModel, ResolveModel("not-a-model").Name)
	assert.Equal(t, DefaultModel, ResolveModel("").Name)
}
