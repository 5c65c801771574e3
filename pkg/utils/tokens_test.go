package utils

import (
	"errors"
	"testing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
)

func TestOnceEncodingLoadsOnce(t *testing.T) {
	var loads int
	enc := onceEncoding(func() (*tiktoken.Tiktoken, error) {
		loads++
		return nil, errors.New("offline")
	})

	for range 3 {
		_, err := enc()
		assert.EqualError(t, err, "offline")
	}
	assert.Equal(t, 1, loads)
}
