package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "national trunk prefix", raw: "0712345678", want: "254712345678"},
		{name: "bare subscriber number", raw: "712345678", want: "254712345678"},
		{name: "already canonical", raw: "254712345678", want: "254712345678"},
		{name: "formatting stripped", raw: "0712 345 678", want: "254712345678"},
		{name: "plus prefix stripped", raw: "+254712345678", want: "254712345678"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "wrong country code", raw: "255712345678", wantErr: true},
		{name: "trunk prefix but wrong length", raw: "07123456", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
