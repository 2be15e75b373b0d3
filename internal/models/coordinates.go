package models

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LonLat returns the point in GeoJSON axis order.
func (c Coordinates) LonLat() []float64 {
	return []float64{c.Lon, c.Lat}
}
