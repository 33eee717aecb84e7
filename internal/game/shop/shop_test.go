package shop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergloam/chimera/internal/game/content"
	"github.com/evergloam/chimera/internal/game/inventory"
	"github.com/evergloam/chimera/internal/game/shop"
)

func testRegistry(t *testing.T) *content.Registry {
	t.Helper()
	reg := content.NewRegistry()
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "steel_longsword", Name: "Steel Longsword",
		Category: content.CategoryWeapon, Price: 450, DamageDice: "2d6",
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "healing_draught", Name: "Healing Draught",
		Category: content.CategoryConsumable, Price: 30,
		Restore: content.RestoreEffect{HP: 50},
	}))
	require.NoError(t, reg.RegisterItem(&content.ItemDef{
		ID: "vault_key", Name: "Vault Key",
		Category: content.CategoryKey, Price: 0,
	}))
	return reg
}

func smithDef() *content.ShopDef {
	return &content.ShopDef{
		ID: "rivermouth_smith", Name: "Rivermouth Smithy",
		Stock: []content.ShopStock{
			{ItemID: "steel_longsword", Stock: 1},
			{ItemID: "healing_draught", Stock: shop.Unlimited},
		},
		BuyMultiplier:  1.0,
		SellMultiplier: 0.5,
	}
}

func TestSession_Prices(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)

	price, ok := s.BuyPrice("steel_longsword")
	require.True(t, ok)
	assert.Equal(t, 450, price)

	price, ok = s.SellPrice("steel_longsword")
	require.True(t, ok)
	assert.Equal(t, 225, price)

	_, ok = s.BuyPrice("vault_key")
	assert.False(t, ok, "not carried")
	_, ok = s.SellPrice("vault_key")
	assert.False(t, ok, "key items are unsellable")
}

func TestSession_PriceOverrideAndMultipliers(t *testing.T) {
	reg := testRegistry(t)
	def := &content.ShopDef{
		ID: "black_market", Name: "Black Market",
		Stock:          []content.ShopStock{{ItemID: "healing_draught", Price: 100, Stock: shop.Unlimited}},
		BuyMultiplier:  1.5,
		SellMultiplier: 0.25,
	}
	s := shop.NewSession(def, reg, nil)

	price, ok := s.BuyPrice("healing_draught")
	require.True(t, ok)
	assert.Equal(t, 150, price, "override price scaled by buy multiplier")

	price, ok = s.SellPrice("healing_draught")
	require.True(t, ok)
	assert.Equal(t, 7, price, "catalog price 30 * 0.25, truncated")
}

func TestSession_Buy(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(inventory.DefaultCapacity)
	require.NoError(t, inv.AddGold(500))

	res := s.Buy("steel_longsword", 1, inv)
	require.True(t, res.Success)
	assert.Equal(t, 50, inv.Gold)
	assert.Equal(t, 1, inv.Count("steel_longsword"))
	assert.Equal(t, 0, s.Stock("steel_longsword"))

	res = s.Buy("steel_longsword", 1, inv)
	assert.False(t, res.Success, "stock exhausted")
	assert.Equal(t, 50, inv.Gold, "failed buy changes nothing")
}

func TestSession_BuyInsufficientGold(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(inventory.DefaultCapacity)
	require.NoError(t, inv.AddGold(29))

	res := s.Buy("healing_draught", 1, inv)
	assert.False(t, res.Success)
	assert.Equal(t, "Not enough gold", res.Message)
	assert.Equal(t, 29, inv.Gold)
	assert.Equal(t, 0, inv.Count("healing_draught"))
}

func TestSession_BuyUnlimitedStock(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(inventory.DefaultCapacity)
	require.NoError(t, inv.AddGold(300))

	res := s.Buy("healing_draught", 5, inv)
	require.True(t, res.Success)
	assert.Equal(t, 150, inv.Gold)
	assert.Equal(t, 5, inv.Count("healing_draught"))
	assert.Equal(t, shop.Unlimited, s.Stock("healing_draught"))
}

func TestSession_BuyFullPack(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(1)
	require.NoError(t, inv.AddGold(1000))
	require.NoError(t, inv.AddItem("steel_longsword", 1))

	res := s.Buy("healing_draught", 1, inv)
	assert.False(t, res.Success)
	assert.Equal(t, "Your pack is full", res.Message)
	assert.Equal(t, 1000, inv.Gold)
}

func TestSession_Sell(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(inventory.DefaultCapacity)
	require.NoError(t, inv.AddItem("healing_draught", 3))

	res := s.Sell("healing_draught", 2, inv)
	require.True(t, res.Success)
	assert.Equal(t, 30, inv.Gold)
	assert.Equal(t, 1, inv.Count("healing_draught"))

	res = s.Sell("healing_draught", 2, inv)
	assert.False(t, res.Success, "only one left")
	assert.Equal(t, 1, inv.Count("healing_draught"))

	res = s.Sell("vault_key", 1, inv)
	assert.False(t, res.Success, "key items are unsellable")
}

func TestSession_Cursor(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)

	assert.Equal(t, shop.Cursor{Category: shop.CategoryBuy, Index: 0, Quantity: 1}, s.Cursor())

	s.SetIndex(1)
	s.SetQuantity(4)
	assert.Equal(t, shop.Cursor{Category: shop.CategoryBuy, Index: 1, Quantity: 4}, s.Cursor())

	// Switching lists starts over at the first row.
	s.SetCategory(shop.CategorySell)
	assert.Equal(t, shop.Cursor{Category: shop.CategorySell, Index: 0, Quantity: 1}, s.Cursor())

	s.SetCategory(shop.Category("barter"))
	assert.Equal(t, shop.CategorySell, s.Cursor().Category, "unknown category ignored")

	s.SetIndex(-2)
	s.SetQuantity(0)
	assert.Equal(t, shop.Cursor{Category: shop.CategorySell, Index: 0, Quantity: 1}, s.Cursor())
}

func TestSession_InvalidQuantities(t *testing.T) {
	reg := testRegistry(t)
	s := shop.NewSession(smithDef(), reg, nil)
	inv := inventory.New(inventory.DefaultCapacity)

	assert.False(t, s.Buy("healing_draught", 0, inv).Success)
	assert.False(t, s.Sell("healing_draught", -1, inv).Success)
}
