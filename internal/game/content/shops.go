package content

import "fmt"

// ShopStock is one purchasable line in a shop.
type ShopStock struct {
	ItemID string `yaml:"item"`
	// Price overrides the item's catalog price when > 0.
	Price int `yaml:"price"`
	// Stock is the purchasable quantity; -1 = unlimited.
	Stock int `yaml:"stock"`
}

// ShopDef defines a shop: its stock and its buy/sell price multipliers.
type ShopDef struct {
	ID    string      `yaml:"id"`
	Name  string      `yaml:"name"`
	Stock []ShopStock `yaml:"stock"`
	// BuyMultiplier scales catalog prices when the player buys. Default 1.0.
	BuyMultiplier float64 `yaml:"buy_multiplier"`
	// SellMultiplier scales catalog prices when the player sells. Default 0.5.
	SellMultiplier float64 `yaml:"sell_multiplier"`
}

// Validate checks shop invariants.
func (d *ShopDef) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("shop must have an id")
	}
	if d.Name == "" {
		return fmt.Errorf("shop %q: name must not be empty", d.ID)
	}
	if len(d.Stock) == 0 {
		return fmt.Errorf("shop %q: must stock at least one item", d.ID)
	}
	for i, s := range d.Stock {
		if s.ItemID == "" {
			return fmt.Errorf("shop %q: stock[%d] must name an item", d.ID, i)
		}
		if s.Price < 0 {
			return fmt.Errorf("shop %q: stock[%d] price must be >= 0, got %d", d.ID, i, s.Price)
		}
		if s.Stock < -1 {
			return fmt.Errorf("shop %q: stock[%d] stock must be >= -1, got %d", d.ID, i, s.Stock)
		}
	}
	if d.BuyMultiplier < 0 {
		return fmt.Errorf("shop %q: buy_multiplier must be >= 0, got %f", d.ID, d.BuyMultiplier)
	}
	if d.SellMultiplier < 0 {
		return fmt.Errorf("shop %q: sell_multiplier must be >= 0, got %f", d.ID, d.SellMultiplier)
	}
	return nil
}
