package models

// Facility is one research facility row from the science capability directory.
// Latitude and Longitude are nil when the upstream row has no usable value.
type Facility struct {
	ID           int      `json:"id"`
	Name         string   `json:"name" validate:"required"`
	Abbreviation string   `json:"abbreviation,omitempty"`
	Overview     string   `json:"overview"`
	Address      string   `json:"address"`
	Sectors      string   `json:"sectors"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// Mappable reports whether both coordinates are present. Zero is a present value.
func (f Facility) Mappable() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// Position returns the facility coordinates and whether the facility is mappable.
func (f Facility) Position() (Coordinates, bool) {
	if !f.Mappable() {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *f.Latitude, Lon: *f.Longitude}, true
}
