// Package locations holds the static catalog of physical locations where
// warehouses can operate, together with the per-location limits on warehouse
// count and total capacity.
package locations

import "strings"

// Location describes a physical site and its warehouse limits.
type Location struct {
	Identification        string
	MaxNumberOfWarehouses int
	MaxCapacity           int
}

var catalog = []Location{
	{Identification: "ZWOLLE-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
	{Identification: "ZWOLLE-002", MaxNumberOfWarehouses: 2, MaxCapacity: 50},
	{Identification: "AMSTERDAM-001", MaxNumberOfWarehouses: 5, MaxCapacity: 100},
	{Identification: "AMSTERDAM-002", MaxNumberOfWarehouses: 2, MaxCapacity: 75},
	{Identification: "TILBURG-001", MaxNumberOfWarehouses: 1, MaxCapacity: 40},
	{Identification: "HELMOND-001", MaxNumberOfWarehouses: 1, MaxCapacity: 45},
	{Identification: "EINDHOVEN-001", MaxNumberOfWarehouses: 2, MaxCapacity: 70},
	{Identification: "VETSBY-001", MaxNumberOfWarehouses: 1, MaxCapacity: 90},
}

// Gateway resolves location identifiers against the static catalog.
type Gateway struct{}

func NewGateway() *Gateway {
	return &Gateway{}
}

// Resolve returns the location for the given identifier, or false when the
// identifier is unknown, empty, or blank.
func (g *Gateway) Resolve(identification string) (Location, bool) {
	trimmed := strings.TrimSpace(identification)
	if trimmed == "" {
		return Location{}, false
	}
	for _, loc := range catalog {
		if loc.Identification == trimmed {
			return loc, true
		}
	}
	return Location{}, false
}

// All returns a copy of the full catalog.
func (g *Gateway) All() []Location {
	out := make([]Location, len(catalog))
	copy(out, catalog)
	return out
}
