// File: api/errors_test.go
// Author: momentics <momentics@gmail.com>

package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-nic/api"
)

func TestCodeOfClassifiesStructuredErrors(t *testing.T) {
	err := api.NewError(api.ErrCodeAlreadyInitialized, "setup already performed")
	assert.Equal(t, api.ErrCodeAlreadyInitialized, api.CodeOf(err))

	wrapped := fmt.Errorf("setup: %w", err)
	assert.Equal(t, api.ErrCodeAlreadyInitialized, api.CodeOf(wrapped))
}

func TestCodeOfClassifiesSentinels(t *testing.T) {
	assert.Equal(t, api.ErrCodeOK, api.CodeOf(nil))
	assert.Equal(t, api.ErrCodeNotSupported, api.CodeOf(api.ErrNotSupported))
	assert.Equal(t, api.ErrCodeNotSupported,
		api.CodeOf(fmt.Errorf("stats reset: %w", api.ErrNotSupported)))
	assert.Equal(t, api.ErrCodeResourceExhausted, api.CodeOf(api.ErrPoolBusy))
	assert.Equal(t, api.ErrCodeInternal, api.CodeOf(errors.New("driver fault")))
}

func TestErrorContextRendering(t *testing.T) {
	err := api.NewError(api.ErrCodeInitFailed, "no hugepages").WithContext("port", 0)
	assert.Contains(t, err.Error(), "no hugepages")
	assert.Contains(t, err.Error(), "port")
}
