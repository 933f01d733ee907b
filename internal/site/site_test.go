package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSite(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, "Universidad EAFIT", s.Name)
	assert.Equal(t, 15, s.Zoom)
	assert.Equal(t, []Field{{"Tipo", "ESP32"}, {"Variable", "Luz"}, {"Frecuencia", "Configurable"}}, s.SensorFields())
	assert.Equal(t, Field{"Altitud", "~1,495 msnm"}, s.LocationFields()[2])
}

func TestTileAndMarker(t *testing.T) {
	s := Default()
	tile := s.Tile()
	assert.EqualValues(t, 15, tile.Z)
	assert.EqualValues(t, 9504, tile.X)
	assert.EqualValues(t, 15818, tile.Y)
	assert.Equal(t, "https://tile.openstreetmap.org/15/9504/15818.png", s.TileURL())

	left, top := s.Marker()
	assert.InDelta(t, 69.5, left, 0.5)
	assert.InDelta(t, 50.3, top, 0.5)
	assert.True(t, tile.Bound().Contains(s.Point()))
}

func TestGeoJSON(t *testing.T) {
	b, err := Default().GeoJSON()
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, sonic.Unmarshal(b, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	f := doc.Features[0]
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-75.5783, 6.2006}, f.Geometry.Coordinates)
	assert.Equal(t, "Universidad EAFIT", f.Properties["name"])
}

func TestValidate(t *testing.T) {
	s := Default()
	s.Latitude = 95
	assert.Error(t, s.Validate())

	s = Default()
	s.Zoom = 22
	assert.Error(t, s.Validate())
}

func TestLoadAsset(t *testing.T) {
	_, err := LoadAsset(filepath.Join(t.TempDir(), "ola.jpg"))
	assert.ErrorIs(t, err, ErrMissingAsset)

	_, err = LoadAsset("")
	assert.ErrorIs(t, err, ErrMissingAsset)

	p := filepath.Join(t.TempDir(), "ola.jpg")
	require.NoError(t, os.WriteFile(p, []byte("\xff\xd8\xff"), 0o644))
	a, err := LoadAsset(p)
	require.NoError(t, err)
	assert.Equal(t, "ola.jpg", a.Name)
	assert.Equal(t, "image/jpeg", a.ContentType)
	assert.Len(t, a.Data, 3)
}
