package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"transport", fmt.Errorf("fetch locations: %w", ErrTransport), KindTransport},
		{"decode", fmt.Errorf("fetch parameters: %w", ErrDecode), KindDecode},
		{"unknown", ErrUnknown, KindUnknown},
		{"input validation", fmt.Errorf("%w: no location", ErrInputValidation), KindInputValidation},
		{"empty result", ErrEmptyResult, KindEmptyResult},
		{"unclassified", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
