package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIMEI(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "490154203237518", want: "490154203237518"},
		{name: "with separators", raw: " 49-015420-323751-8 ", want: "490154203237518"},
		{name: "second valid", raw: "356938035643809", want: "356938035643809"},
		{name: "bad check digit", raw: "490154203237519", wantErr: true},
		{name: "too short", raw: "49015420323751", wantErr: true},
		{name: "letters", raw: "49015420323751A", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIMEI(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidIMEI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettlementResultString(t *testing.T) {
	assert.Equal(t, "newly_settled", SettlementNewlySettled.String())
	assert.Equal(t, "already_settled", SettlementAlreadySettled.String())
	assert.Equal(t, "not_found", SettlementNotFound.String())
}
