package pointcloud

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRSFromComments(t *testing.T) {
	tests := []struct {
		name     string
		comments []string
		want     CRS
		epsg     int
	}{
		{"utm north", []string{"created by s2p", "projection: UTM 31N"}, CRS{"UTM", "31N"}, 32631},
		{"utm south", []string{"projection: UTM 7S"}, CRS{"UTM", "7S"}, 32707},
		{"epsg", []string{"projection: EPSG 2154"}, CRS{"EPSG", "2154"}, 2154},
		{"utm wins over epsg", []string{"projection: EPSG 4326", "projection: UTM 18N"}, CRS{"UTM", "18N"}, 32618},
		{"last match", []string{"projection: UTM 10N", "projection: UTM 11N"}, CRS{"UTM", "11N"}, 32611},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CRSFromComments(tt.comments)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			code, err := got.EPSG()
			require.NoError(t, err)
			assert.Equal(t, tt.epsg, code)
		})
	}
}

func TestCRSFromComments_Missing(t *testing.T) {
	for _, comments := range [][]string{nil, {"projection: UTM 123N"}, {"projection: EPSG 12"}, {"note projection: UTM 31N"}} {
		_, err := CRSFromComments(comments)
		assert.True(t, errors.Is(err, ErrNoCRS), "comments %v", comments)
	}
}

func TestCRS_EPSGInvalid(t *testing.T) {
	for _, c := range []CRS{{"UTM", "0N"}, {"UTM", "61S"}, {"UTM", "N"}, {"WKT", "x"}} {
		_, err := c.EPSG()
		assert.Error(t, err, "crs %v", c)
	}
	assert.Equal(t, "unknown", CRS{}.String())
	assert.Equal(t, "UTM 31N", CRS{"UTM", "31N"}.String())
}
