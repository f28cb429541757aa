package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want LeadSource
	}{
		{"facebook", SourceFacebook},
		{" Cars.com ", SourceCarsCom},
		{"direct", SourceHotLead},
		{"OfferUp", SourceOfferUp},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource_UnknownListsMarketplaces(t *testing.T) {
	_, err := ParseSource("ebay")
	require.ErrorIs(t, err, ErrUnknownSource)
	for _, m := range Marketplaces() {
		assert.Contains(t, err.Error(), string(m))
	}
	assert.Contains(t, err.Error(), string(SourceHotLead))
}
