// Package geospatial holds small coordinate helpers shared by the store and the map client.
package geospatial

import "math"

// WrapLongitude maps any longitude into [-180, 180]. Values already in range,
// including ±180, are returned unchanged.
func WrapLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	w := math.Mod(lon+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}

// ClampLatitude limits lat to [-90, 90].
func ClampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// Ring is a closed polygon ring of [lon, lat] vertices. The closing vertex may be omitted.
type Ring [][2]float64

// Contains runs an even-odd ray cast for the point (lon, lat).
func (r Ring) Contains(lon, lat float64) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// BBox returns the ring's extent as minLon, minLat, maxLon, maxLat.
func (r Ring) BBox() [4]float64 {
	if len(r) == 0 {
		return [4]float64{}
	}
	b := [4]float64{r[0][0], r[0][1], r[0][0], r[0][1]}
	for _, p := range r[1:] {
		b[0] = math.Min(b[0], p[0])
		b[1] = math.Min(b[1], p[1])
		b[2] = math.Max(b[2], p[0])
		b[3] = math.Max(b[3], p[1])
	}
	return b
}
