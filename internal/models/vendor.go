package models

import "strings"

// Vendor as returned by the marketplace backend
type Vendor struct {
	ID           string `json:"_id"`
	Slug         string `json:"slug,omitempty"`
	BusinessName string `json:"businessName"`
	Logo         string `json:"logo"`
	Location     string `json:"location"`
	Category     string `json:"category"`
}

// DeliveryLocation is a vendor-scoped delivery zone with its flat fee
type DeliveryLocation struct {
	Location string `json:"location"`
	Price    int64  `json:"price"`
}

// DeliveryLocations is the set of zones a vendor delivers to
type DeliveryLocations []DeliveryLocation

// Find looks a location up by name, ignoring case and surrounding spaces
func (l DeliveryLocations) Find(name string) (DeliveryLocation, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DeliveryLocation{}, false
	}
	for _, loc := range l {
		if strings.EqualFold(strings.TrimSpace(loc.Location), name) {
			return loc, true
		}
	}
	return DeliveryLocation{}, false
}

// FeeFor returns the fee bound to the named location, or 0 when the
// location is unset or unknown.
func (l DeliveryLocations) FeeFor(name string) int64 {
	loc, ok := l.Find(name)
	if !ok {
		return 0
	}
	return loc.Price
}
