package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	set := ToSet([]int32{0, 1, 1, 3})
	assert.Equal(t, 3, set.Size())
	assert.True(t, set.Contains(3))
	set.Remove(3)
	set.Add(2)
	assert.ElementsMatch(t, []int32{0, 1, 2}, set.ToSlice())
	assert.Equal(t, 0, ToSet[string](nil).Size())
}

func TestValidationError(t *testing.T) {
	var err error = NewValidationError("vm1", "image is required")
	var validation ValidationError
	assert.True(t, errors.As(err, &validation))
	assert.Equal(t, "vm1", validation.Resource)
	assert.Equal(t, "invalid definition of vm1: image is required", err.Error())
}

func TestConfigDefaults(t *testing.T) {
	config := Config{Location: "westeurope", Tags: map[string]string{"owner": "platform", "env": "prod"}}
	assert.Equal(t, "westeurope", config.ResourceLocation(""))
	assert.Equal(t, "eastus", config.ResourceLocation("eastus"))
	assert.Equal(t, map[string]string{"owner": "platform", "env": "dev"}, config.ResourceTags(map[string]string{"env": "dev"}))
	assert.Equal(t, map[string]string{"owner": "platform", "env": "prod"}, config.Tags)
}
