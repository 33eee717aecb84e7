// Package inventory tracks the party's shared gold, item stacks, and loose
// shards under non-negative and capacity invariants.
package inventory

import "fmt"

// DefaultCapacity is the number of distinct item stacks an inventory holds
// unless configured otherwise.
const DefaultCapacity = 64

// Inventory is the party's shared holdings. All mutating operations either
// apply fully or leave the inventory unchanged.
type Inventory struct {
	Gold int `json:"gold"`
	// Items maps item id to stack quantity; quantities are always >= 1.
	Items map[string]int `json:"items"`
	// Shards are loose, unsocketed shard ids. Duplicates are allowed.
	Shards []string `json:"shards,omitempty"`
	// Capacity bounds the number of distinct item stacks.
	Capacity int `json:"capacity"`
}

// New returns an empty inventory with the given stack capacity.
//
// Precondition:  capacity must be > 0; pass DefaultCapacity when unsure.
// Postcondition: Gold == 0 and no items are held.
func New(capacity int) *Inventory {
	return &Inventory{
		Items:    make(map[string]int),
		Capacity: capacity,
	}
}

// Count returns the held quantity of an item, zero for unknown ids.
func (inv *Inventory) Count(itemID string) int {
	return inv.Items[itemID]
}

// Has reports whether at least quantity of the item is held.
func (inv *Inventory) Has(itemID string, quantity int) bool {
	return inv.Items[itemID] >= quantity
}

// AddItem adds quantity of an item, merging into an existing stack.
//
// Precondition:  quantity must be >= 1.
// Postcondition: Count(itemID) grows by quantity, or an error is returned and
// nothing changes.
func (inv *Inventory) AddItem(itemID string, quantity int) error {
	if itemID == "" {
		return fmt.Errorf("inventory: item id must not be empty")
	}
	if quantity < 1 {
		return fmt.Errorf("inventory: quantity must be >= 1, got %d", quantity)
	}
	if _, held := inv.Items[itemID]; !held && len(inv.Items) >= inv.Capacity {
		return fmt.Errorf("inventory: no room for %q, all %d stacks in use", itemID, inv.Capacity)
	}
	inv.Items[itemID] += quantity
	return nil
}

// RemoveItem removes quantity of an item, deleting the stack when it empties.
//
// Precondition:  quantity must be >= 1.
// Postcondition: Count(itemID) shrinks by quantity, or an error is returned
// and nothing changes. Quantities never go negative.
func (inv *Inventory) RemoveItem(itemID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("inventory: quantity must be >= 1, got %d", quantity)
	}
	held := inv.Items[itemID]
	if held < quantity {
		return fmt.Errorf("inventory: cannot remove %d of %q, only %d held", quantity, itemID, held)
	}
	if held == quantity {
		delete(inv.Items, itemID)
		return nil
	}
	inv.Items[itemID] = held - quantity
	return nil
}

// AddGold increases the party's gold.
//
// Precondition: amount must be >= 0.
func (inv *Inventory) AddGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("inventory: gold amount must be >= 0, got %d", amount)
	}
	inv.Gold += amount
	return nil
}

// SpendGold decreases the party's gold.
//
// Postcondition: Gold never goes negative; an error is returned when the
// party cannot afford the amount.
func (inv *Inventory) SpendGold(amount int) error {
	if amount < 0 {
		return fmt.Errorf("inventory: gold amount must be >= 0, got %d", amount)
	}
	if inv.Gold < amount {
		return fmt.Errorf("inventory: cannot spend %d gold, only %d held", amount, inv.Gold)
	}
	inv.Gold -= amount
	return nil
}

// AddShard adds a loose shard.
func (inv *Inventory) AddShard(shardID string) error {
	if shardID == "" {
		return fmt.Errorf("inventory: shard id must not be empty")
	}
	inv.Shards = append(inv.Shards, shardID)
	return nil
}

// RemoveShard removes one copy of a loose shard.
//
// Postcondition: Returns an error when the shard is not held.
func (inv *Inventory) RemoveShard(shardID string) error {
	for i, s := range inv.Shards {
		if s == shardID {
			inv.Shards = append(inv.Shards[:i], inv.Shards[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("inventory: shard %q not held", shardID)
}

// HasShard reports whether at least one copy of the shard is held.
func (inv *Inventory) HasShard(shardID string) bool {
	for _, s := range inv.Shards {
		if s == shardID {
			return true
		}
	}
	return false
}

// StackCount returns the number of distinct item stacks in use.
func (inv *Inventory) StackCount() int {
	return len(inv.Items)
}
