package tui

import "github.com/samirrijal/pinmap/internal/pkg/geospatial"

// landmass is a coarse continent outline with a precomputed bounding box.
type landmass struct {
	name string
	ring geospatial.Ring
	bbox [4]float64 // minLon, minLat, maxLon, maxLat
}

func newLandmass(name string, ring geospatial.Ring) landmass {
	return landmass{name: name, ring: ring, bbox: ring.BBox()}
}

func (l landmass) contains(lon, lat float64) bool {
	if lon < l.bbox[0] || lon > l.bbox[2] || lat < l.bbox[1] || lat > l.bbox[3] {
		return false
	}
	return l.ring.Contains(lon, lat)
}

// Outlines are [lon, lat] and only good enough to read the map at a glance.
var world = []landmass{
	newLandmass("north america", geospatial.Ring{
		{-168, 66}, {-156, 71}, {-125, 70}, {-95, 72}, {-80, 73}, {-62, 60}, {-56, 51},
		{-66, 44}, {-76, 35}, {-80, 25}, {-90, 29}, {-97, 26}, {-95, 18}, {-87, 21},
		{-77, 8}, {-86, 12}, {-105, 20}, {-112, 30}, {-117, 32}, {-124, 40}, {-124, 48},
		{-135, 58}, {-152, 58}, {-165, 60},
	}),
	newLandmass("greenland", geospatial.Ring{
		{-73, 78}, {-60, 82}, {-30, 83}, {-20, 75}, {-40, 65}, {-50, 60}, {-55, 68},
	}),
	newLandmass("south america", geospatial.Ring{
		{-80, 9}, {-62, 10}, {-50, 0}, {-35, -5}, {-40, -22}, {-48, -28}, {-58, -38},
		{-65, -42}, {-68, -55}, {-75, -50}, {-73, -40}, {-71, -20}, {-81, -5},
	}),
	newLandmass("eurasia", geospatial.Ring{
		{-10, 36}, {-9, 43}, {-2, 44}, {-5, 48}, {5, 53}, {8, 57}, {5, 62}, {15, 69},
		{30, 71}, {45, 68}, {70, 73}, {100, 78}, {140, 72}, {180, 69}, {180, 65},
		{170, 60}, {160, 52}, {141, 53}, {135, 43}, {127, 35}, {122, 40}, {120, 30},
		{108, 21}, {105, 9}, {100, 14}, {98, 8}, {92, 22}, {80, 13}, {77, 8}, {72, 20},
		{67, 25}, {57, 25}, {50, 30}, {48, 30}, {56, 26}, {58, 22}, {52, 16}, {44, 12},
		{35, 28}, {36, 36}, {27, 36}, {26, 40}, {22, 37}, {15, 40}, {12, 44}, {8, 44},
		{3, 42}, {-5, 36},
	}),
	newLandmass("great britain", geospatial.Ring{
		{-6, 50}, {2, 51}, {0, 58}, {-6, 58},
	}),
	newLandmass("africa", geospatial.Ring{
		{-17, 21}, {-6, 36}, {10, 37}, {20, 31}, {32, 31}, {35, 28}, {43, 12}, {51, 12},
		{40, -2}, {40, -15}, {33, -26}, {20, -35}, {18, -30}, {12, -17}, {9, -1}, {9, 4},
		{-8, 4}, {-17, 14},
	}),
	newLandmass("madagascar", geospatial.Ring{
		{44, -25}, {50, -15}, {49, -12}, {44, -16},
	}),
	newLandmass("borneo", geospatial.Ring{
		{109, 1}, {117, 7}, {119, 1}, {116, -4}, {110, -3},
	}),
	newLandmass("australia", geospatial.Ring{
		{113, -22}, {122, -17}, {131, -12}, {137, -12}, {142, -10}, {146, -19},
		{153, -25}, {151, -34}, {144, -38}, {135, -35}, {129, -32}, {115, -34},
	}),
	newLandmass("antarctica", geospatial.Ring{
		{-180, -70}, {180, -70}, {180, -90}, {-180, -90},
	}),
}

// isLand reports whether a coordinate falls on any landmass.
func isLand(lon, lat float64) bool {
	for _, l := range world {
		if l.contains(lon, lat) {
			return true
		}
	}
	return false
}
