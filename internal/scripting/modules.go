package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the chimera table into L. Every function bridges
// to a Manager callback field; callbacks left nil degrade to no-ops so map
// scripts can be loaded before the game store is fully wired.
//
// Exposed functions:
//   - chimera.set_flag(flag)
//   - chimera.get_flag(flag) -> bool
//   - chimera.give_item(item_id, quantity)
//   - chimera.give_gold(amount)
//   - chimera.start_quest(quest_id)
//   - chimera.message(text)
//
// Precondition: L must be a sandboxed LState from NewSandboxedState.
// Postcondition: The chimera global table is set on L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()

	L.SetField(mod, "set_flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		if m.SetFlag != nil {
			m.SetFlag(flag)
		}
		return 0
	}))

	L.SetField(mod, "get_flag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		set := false
		if m.GetFlag != nil {
			set = m.GetFlag(flag)
		}
		L.Push(lua.LBool(set))
		return 1
	}))

	L.SetField(mod, "give_item", L.NewFunction(func(L *lua.LState) int {
		itemID := L.CheckString(1)
		quantity := 1
		if L.GetTop() >= 2 {
			quantity = L.CheckInt(2)
		}
		if m.GiveItem != nil {
			if err := m.GiveItem(itemID, quantity); err != nil {
				m.logger.Warn("scripting: give_item failed",
					zap.String("item", itemID),
					zap.Int("quantity", quantity),
					zap.Error(err),
				)
			}
		}
		return 0
	}))

	L.SetField(mod, "give_gold", L.NewFunction(func(L *lua.LState) int {
		amount := L.CheckInt(1)
		if m.GiveGold != nil {
			m.GiveGold(amount)
		}
		return 0
	}))

	L.SetField(mod, "start_quest", L.NewFunction(func(L *lua.LState) int {
		questID := L.CheckString(1)
		if m.StartQuest != nil {
			m.StartQuest(questID)
		}
		return 0
	}))

	L.SetField(mod, "message", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		if m.ShowMessage != nil {
			m.ShowMessage(text)
		}
		return 0
	}))

	L.SetGlobal("chimera", mod)
}
