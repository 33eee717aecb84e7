// Package shop implements shop visits: per-visit stock tracking, price
// computation with buy/sell multipliers, and atomic buy/sell transactions.
package shop

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/inventory"
)

// Unlimited marks a stock line with no quantity cap.
const Unlimited = -1

// Category selects which side of the shop menu is open.
type Category string

const (
	CategoryBuy  Category = "buy"
	CategorySell Category = "sell"
)

// Cursor is the menu position within a visit: the open category, the
// highlighted row, and the quantity the next transaction will move.
type Cursor struct {
	Category Category
	Index    int
	Quantity int
}

// Result reports a user-facing transaction outcome. Failures carry a message
// and never mutate state.
type Result struct {
	Success bool
	Message string
}

// Session is one open shop visit. Stock decrements live for the duration of
// the visit. Not safe for concurrent use.
type Session struct {
	def    *content.ShopDef
	reg    *content.Registry
	logger *zap.Logger
	// stock is the remaining purchasable quantity per item id.
	stock  map[string]int
	cursor Cursor
}

// NewSession opens a shop.
//
// Precondition:  def must have passed Validate; reg must not be nil; logger
// may be nil.
// Postcondition: Stock counts match the definition and the cursor sits on the
// first buy row with quantity 1.
func NewSession(def *content.ShopDef, reg *content.Registry, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		def:    def,
		reg:    reg,
		logger: logger,
		stock:  make(map[string]int, len(def.Stock)),
		cursor: Cursor{Category: CategoryBuy, Quantity: 1},
	}
	for _, line := range def.Stock {
		s.stock[line.ItemID] = line.Stock
	}
	return s
}

// ShopID returns the open shop's id.
func (s *Session) ShopID() string { return s.def.ID }

// Name returns the shop's display name.
func (s *Session) Name() string { return s.def.Name }

// Cursor returns the current menu position.
func (s *Session) Cursor() Cursor { return s.cursor }

// SetCategory switches between the buy and sell lists. Changing category
// resets the row and quantity; unknown categories are ignored.
func (s *Session) SetCategory(c Category) {
	if c != CategoryBuy && c != CategorySell {
		return
	}
	if c != s.cursor.Category {
		s.cursor = Cursor{Category: c, Quantity: 1}
	}
}

// SetIndex moves the highlighted row, clamping negatives to 0.
func (s *Session) SetIndex(i int) {
	if i < 0 {
		i = 0
	}
	s.cursor.Index = i
}

// SetQuantity sets the quantity for the next transaction, clamping below 1.
func (s *Session) SetQuantity(q int) {
	if q < 1 {
		q = 1
	}
	s.cursor.Quantity = q
}

// Stock returns the remaining quantity of an item, Unlimited for uncapped
// lines, and 0 for items the shop does not carry.
func (s *Session) Stock(itemID string) int {
	qty, ok := s.stock[itemID]
	if !ok {
		return 0
	}
	return qty
}

// BuyPrice returns the per-unit purchase price of an item the shop carries.
// A stock-line price override beats the catalog price; either is scaled by
// the buy multiplier.
//
// Postcondition: Returns (price, true) for carried items with a known
// definition, (0, false) otherwise.
func (s *Session) BuyPrice(itemID string) (int, bool) {
	line, ok := s.stockLine(itemID)
	if !ok {
		return 0, false
	}
	base := line.Price
	if base == 0 {
		item, ok := s.reg.Item(itemID)
		if !ok {
			s.logger.Warn("shop stocks unknown item", zap.String("shop_id", s.def.ID), zap.String("item_id", itemID))
			return 0, false
		}
		base = item.Price
	}
	return scale(base, s.buyMultiplier()), true
}

// SellPrice returns the per-unit price the shop pays for an item. Key items
// cannot be sold.
//
// Postcondition: Returns (price, true) for sellable items, (0, false)
// otherwise.
func (s *Session) SellPrice(itemID string) (int, bool) {
	item, ok := s.reg.Item(itemID)
	if !ok {
		return 0, false
	}
	if item.Category == content.CategoryKey {
		return 0, false
	}
	return scale(item.Price, s.sellMultiplier()), true
}

// Buy purchases quantity of an item: stock, gold, and inventory capacity are
// all checked before anything changes.
//
// Precondition:  quantity must be >= 1.
// Postcondition: On success gold decreases by price*quantity, the inventory
// grows, and stock shrinks; on failure nothing changes.
func (s *Session) Buy(itemID string, quantity int, inv *inventory.Inventory) Result {
	if quantity < 1 {
		return Result{Success: false, Message: "Nothing to buy"}
	}
	price, ok := s.BuyPrice(itemID)
	if !ok {
		return Result{Success: false, Message: "We don't carry that"}
	}
	remaining := s.Stock(itemID)
	if remaining != Unlimited && remaining < quantity {
		return Result{Success: false, Message: "Not enough in stock"}
	}
	total := price * quantity
	if inv.Gold < total {
		return Result{Success: false, Message: "Not enough gold"}
	}
	if err := inv.AddItem(itemID, quantity); err != nil {
		return Result{Success: false, Message: "Your pack is full"}
	}
	if err := inv.SpendGold(total); err != nil {
		// Unreachable after the gold check; roll the items back.
		_ = inv.RemoveItem(itemID, quantity)
		return Result{Success: false, Message: "Not enough gold"}
	}
	if remaining != Unlimited {
		s.stock[itemID] = remaining - quantity
	}
	return Result{Success: true, Message: fmt.Sprintf("Bought %d for %d gold", quantity, total)}
}

// Sell sells quantity of an item from the inventory.
//
// Precondition:  quantity must be >= 1.
// Postcondition: On success the inventory shrinks and gold grows; on failure
// nothing changes.
func (s *Session) Sell(itemID string, quantity int, inv *inventory.Inventory) Result {
	if quantity < 1 {
		return Result{Success: false, Message: "Nothing to sell"}
	}
	price, ok := s.SellPrice(itemID)
	if !ok {
		return Result{Success: false, Message: "We won't take that"}
	}
	if !inv.Has(itemID, quantity) {
		return Result{Success: false, Message: "You don't have that many"}
	}
	if err := inv.RemoveItem(itemID, quantity); err != nil {
		return Result{Success: false, Message: "You don't have that many"}
	}
	total := price * quantity
	_ = inv.AddGold(total)
	return Result{Success: true, Message: fmt.Sprintf("Sold %d for %d gold", quantity, total)}
}

func (s *Session) stockLine(itemID string) (content.ShopStock, bool) {
	for _, line := range s.def.Stock {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return content.ShopStock{}, false
}

func (s *Session) buyMultiplier() float64 {
	if s.def.BuyMultiplier == 0 {
		return 1.0
	}
	return s.def.BuyMultiplier
}

func (s *Session) sellMultiplier() float64 {
	if s.def.SellMultiplier == 0 {
		return 0.5
	}
	return s.def.SellMultiplier
}

// scale multiplies a price, truncating toward zero with a floor of 1 for
// nonzero bases.
func scale(base int, mult float64) int {
	if base == 0 {
		return 0
	}
	p := int(float64(base) * mult)
	if p < 1 {
		p = 1
	}
	return p
}
