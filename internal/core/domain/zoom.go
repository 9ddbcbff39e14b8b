package domain

// RGB is a display color for a zoom level badge.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ZoomLevel is one entry of the static zoom catalog: a named band of
// camera distance with the nominal ground area it covers.
type ZoomLevel struct {
	Level  float64 `json:"level"`
	AreaKm int     `json:"area_km"`
	Name   string  `json:"name"`
	Color  RGB     `json:"color"`
}

// ZoomLevels is the immutable zoom catalog, ordered by Level ascending.
// AreaKm values track round(level * 220), rounded to presentation-friendly
// numbers. Do not reorder: nearest-area classification breaks ties by
// taking the first entry in this order.
var ZoomLevels = []ZoomLevel{
	{Level: 0.05, AreaKm: 10, Name: "Street Level", Color: RGB{R: 230, G: 57, B: 70}},
	{Level: 0.15, AreaKm: 33, Name: "Neighborhood", Color: RGB{R: 244, G: 108, B: 63}},
	{Level: 0.35, AreaKm: 75, Name: "City", Color: RGB{R: 250, G: 163, B: 7}},
	{Level: 0.7, AreaKm: 150, Name: "Metro Region", Color: RGB{R: 233, G: 196, B: 106}},
	{Level: 1.5, AreaKm: 330, Name: "District", Color: RGB{R: 138, G: 177, B: 125}},
	{Level: 3, AreaKm: 660, Name: "State", Color: RGB{R: 42, G: 157, B: 143}},
	{Level: 6, AreaKm: 1300, Name: "Region", Color: RGB{R: 69, G: 123, B: 157}},
	{Level: 12, AreaKm: 2600, Name: "Country", Color: RGB{R: 29, G: 53, B: 87}},
	{Level: 25, AreaKm: 5500, Name: "Subcontinent", Color: RGB{R: 94, G: 84, B: 142}},
	{Level: 60, AreaKm: 13000, Name: "Continental", Color: RGB{R: 72, G: 61, B: 139}},
	{Level: 150, AreaKm: 33000, Name: "Global View", Color: RGB{R: 34, G: 34, B: 59}},
}

// ZoomClassification is the result of classifying a continuous zoom
// distance: the chosen catalog entry plus how far the actual coverage sits
// from the entry's nominal area, so callers can detect "far from nearest
// bucket".
type ZoomClassification struct {
	ZoomLevel
	ActualAreaKm int `json:"actual_area_km"`
	AreaDeltaKm  int `json:"area_delta_km"`
}

// TileConfig tells the rendering collaborator how much detail to draw at
// the current zoom distance. The classifier itself renders nothing.
type TileConfig struct {
	TileSize    float64 `json:"tile_size"` // distance units per tile
	MaxStations int     `json:"max_stations"`
	ShowDetails bool    `json:"show_details"`
	ShowLabels  bool    `json:"show_labels"`
	ShowTracks  bool    `json:"show_tracks"`
}
