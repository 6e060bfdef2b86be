package models

// CartItem is the menu item a shopper picks up; it carries what the cart
// needs to display and price the item.
type CartItem struct {
	ProductID string `json:"product_id"`
	VendorID  string `json:"vendor_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // whole currency units
	Image     string `json:"image,omitempty"`
}

// CartEntry is an item held in a pack with its quantity (always >= 1)
type CartEntry struct {
	CartItem
	Quantity int `json:"quantity"`
}

// LineTotal returns price x quantity
func (e CartEntry) LineTotal() int64 {
	return e.Price * int64(e.Quantity)
}

// Pack is one packaging group the vendor prepares separately.
// Packs are addressed by their index in the cart.
type Pack struct {
	Entries []CartEntry `json:"entries"`
}

// Cart holds the shopper's selection as an ordered list of packs.
//
// Packs that lose their last entry stay in place as empty placeholders so
// that the indices of later packs do not shift under the shopper. Only
// RemovePack and Empty change the number of packs downwards.
type Cart struct {
	Packs []Pack `json:"packs"`
}

// AddItem adds one unit of item to the pack at packIndex. A negative index
// addresses the default pack (0). An index at or past the end of the pack
// list opens a new pack at the end. It returns the index of the pack that
// received the item.
func (c *Cart) AddItem(item CartItem, packIndex int) int {
	if packIndex < 0 {
		packIndex = 0
	}
	if packIndex >= len(c.Packs) {
		c.Packs = append(c.Packs, Pack{})
		packIndex = len(c.Packs) - 1
	}

	pack := &c.Packs[packIndex]
	for i := range pack.Entries {
		if pack.Entries[i].ProductID == item.ProductID {
			// stored carts may come back with a bad quantity
			pack.Entries[i].Quantity = max(pack.Entries[i].Quantity, 0) + 1
			return packIndex
		}
	}

	pack.Entries = append(pack.Entries, CartEntry{CartItem: item, Quantity: 1})
	return packIndex
}

// RemoveItem takes one unit of productID out of the pack at packIndex
// (negative means the default pack). The entry is deleted once its last
// unit goes. Unknown products and packs are ignored. It reports whether
// anything changed.
func (c *Cart) RemoveItem(productID string, packIndex int) bool {
	if packIndex < 0 {
		packIndex = 0
	}
	if packIndex >= len(c.Packs) {
		return false
	}

	pack := &c.Packs[packIndex]
	for i := range pack.Entries {
		if pack.Entries[i].ProductID != productID {
			continue
		}
		if pack.Entries[i].Quantity > 1 {
			pack.Entries[i].Quantity--
		} else {
			pack.Entries = append(pack.Entries[:i], pack.Entries[i+1:]...)
		}
		return true
	}
	return false
}

// AddPack opens a new empty pack and returns its index
func (c *Cart) AddPack() int {
	c.Packs = append(c.Packs, Pack{})
	return len(c.Packs) - 1
}

// RemovePack drops the pack at index; later packs move down by one.
func (c *Cart) RemovePack(index int) bool {
	if index < 0 || index >= len(c.Packs) {
		return false
	}
	c.Packs = append(c.Packs[:index], c.Packs[index+1:]...)
	return true
}

// Empty resets the cart to no packs and no entries
func (c *Cart) Empty() {
	c.Packs = nil
}

// IsEmpty reports whether no pack holds an entry
func (c *Cart) IsEmpty() bool {
	for _, p := range c.Packs {
		if len(p.Entries) > 0 {
			return false
		}
	}
	return true
}

// Entries flattens all packs in pack order
func (c *Cart) Entries() []CartEntry {
	var entries []CartEntry
	for _, p := range c.Packs {
		entries = append(entries, p.Entries...)
	}
	return entries
}

// Quantities is the keyed view the menu page renders: total units per
// product across all packs.
func (c *Cart) Quantities() map[string]int {
	quantities := make(map[string]int)
	for _, p := range c.Packs {
		for _, e := range p.Entries {
			quantities[e.ProductID] += e.Quantity
		}
	}
	return quantities
}

// ItemCount is the total number of units in the cart
func (c *Cart) ItemCount() int {
	count := 0
	for _, p := range c.Packs {
		for _, e := range p.Entries {
			count += e.Quantity
		}
	}
	return count
}

// HasItemsOutside reports whether an entry was added from a vendor other
// than vendorID. Entries without a vendor are not counted.
func (c *Cart) HasItemsOutside(vendorID string) bool {
	for _, p := range c.Packs {
		for _, e := range p.Entries {
			if e.VendorID != "" && e.VendorID != vendorID {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy
func (c *Cart) Clone() *Cart {
	clone := &Cart{}
	if c.Packs == nil {
		return clone
	}
	clone.Packs = make([]Pack, len(c.Packs))
	for i, p := range c.Packs {
		if p.Entries != nil {
			clone.Packs[i].Entries = append([]CartEntry(nil), p.Entries...)
		}
	}
	return clone
}
