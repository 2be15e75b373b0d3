package render

// FeatureCollection is a GeoJSON FeatureCollection of marker points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one marker as a GeoJSON Point feature. Properties carry the popup content.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [Lon, Lat]
}

type FeatureProperties struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Overview string   `json:"overview"`
	Address  string   `json:"address"`
	Tags     []string `json:"tags"`
}

// GeoJSON converts the markers of v into a FeatureCollection.
func GeoJSON(v View) FeatureCollection {
	features := make([]Feature, 0, len(v.Markers))
	for _, m := range v.Markers {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: m.Position.LonLat(),
			},
			Properties: FeatureProperties{
				ID:       m.ID,
				Title:    m.Popup.Title,
				Overview: m.Popup.Overview,
				Address:  m.Popup.Address,
				Tags:     m.Popup.Tags,
			},
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
