// Package site holds the static location and sensor metadata shown next to the data.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
)

// Info describes where the sensor is installed and what it measures.
type Info struct {
	Name      string  `mapstructure:"name" yaml:"name" json:"name"`
	Latitude  float64 `mapstructure:"latitude" yaml:"latitude" json:"latitude"`
	Longitude float64 `mapstructure:"longitude" yaml:"longitude" json:"longitude"`
	Zoom      int     `mapstructure:"zoom" yaml:"zoom" json:"zoom"`
	Altitude  string  `mapstructure:"altitude" yaml:"altitude" json:"altitude"`
	Sensor    string  `mapstructure:"sensor" yaml:"sensor" json:"sensor"`
	Variable  string  `mapstructure:"variable" yaml:"variable" json:"variable"`
	Frequency string  `mapstructure:"frequency" yaml:"frequency" json:"frequency"`
}

// Default returns the EAFIT installation.
func Default() Info {
	return Info{
		Name:      "Universidad EAFIT",
		Latitude:  6.2006,
		Longitude: -75.5783,
		Zoom:      15,
		Altitude:  "~1,495 msnm",
		Sensor:    "ESP32",
		Variable:  "Luz",
		Frequency: "Configurable",
	}
}

// Validate checks coordinates and zoom.
func (i Info) Validate() error {
	if i.Latitude < -85.0511 || i.Latitude > 85.0511 {
		return fmt.Errorf("site latitude out of range: %v", i.Latitude)
	}
	if i.Longitude < -180 || i.Longitude > 180 {
		return fmt.Errorf("site longitude out of range: %v", i.Longitude)
	}
	if i.Zoom < 0 || i.Zoom > 19 {
		return fmt.Errorf("site zoom out of range: %d (0-19)", i.Zoom)
	}
	return nil
}

// Point returns the location in orb's lon/lat order.
func (i Info) Point() orb.Point { return orb.Point{i.Longitude, i.Latitude} }

// Tile returns the web-mercator tile holding the location at the configured zoom.
func (i Info) Tile() maptile.Tile {
	return maptile.At(i.Point(), maptile.Zoom(i.Zoom))
}

// TileURL is the OpenStreetMap image for Tile.
func (i Info) TileURL() string {
	t := i.Tile()
	return fmt.Sprintf("https://tile.openstreetmap.org/%d/%d/%d.png", t.Z, t.X, t.Y)
}

// Marker returns the location inside its tile as percentages from the top-left corner.
func (i Info) Marker() (left, top float64) {
	t := i.Tile()
	f := maptile.Fraction(i.Point(), t.Z)
	return (f[0] - float64(t.X)) * 100, (f[1] - float64(t.Y)) * 100
}

// MapLink opens the location in the OpenStreetMap site.
func (i Info) MapLink() string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.4f&mlon=%.4f#map=%d/%.4f/%.4f",
		i.Latitude, i.Longitude, i.Zoom, i.Latitude, i.Longitude)
}

// Feature returns the location as a GeoJSON point with the metadata as properties.
func (i Info) Feature() *geojson.Feature {
	f := geojson.NewFeature(i.Point())
	f.Properties["name"] = i.Name
	f.Properties["altitude"] = i.Altitude
	f.Properties["sensor"] = i.Sensor
	f.Properties["variable"] = i.Variable
	f.Properties["frequency"] = i.Frequency
	f.Properties["zoom"] = i.Zoom
	f.BBox = geojson.NewBBox(i.Tile().Bound())
	return f
}

// GeoJSON encodes the location as a FeatureCollection.
func (i Info) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.Append(i.Feature())
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return b, nil
}

// Field is one labelled line of the site panel.
type Field struct {
	Label string
	Value string
}

// LocationFields are the location lines of the site panel.
func (i Info) LocationFields() []Field {
	return []Field{
		{"Latitud", fmt.Sprintf("%.4f", i.Latitude)},
		{"Longitud", fmt.Sprintf("%.4f", i.Longitude)},
		{"Altitud", i.Altitude},
	}
}

// SensorFields are the sensor lines of the site panel.
func (i Info) SensorFields() []Field {
	return []Field{
		{"Tipo", i.Sensor},
		{"Variable", i.Variable},
		{"Frecuencia", i.Frequency},
	}
}

// ErrMissingAsset is returned when a decorative asset is not on disk. Callers show a notice instead.
var ErrMissingAsset = errors.New("asset not found")

// Asset is a decorative file served as-is.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// LoadAsset reads a decorative file such as the banner image.
func LoadAsset(path string) (*Asset, error) {
	if path == "" {
		return nil, ErrMissingAsset
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", filepath.Base(path), ErrMissingAsset)
		}
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return &Asset{
		Name:        filepath.Base(path),
		ContentType: utils.GetMIME(filepath.Ext(path)),
		Data:        data,
	}, nil
}
