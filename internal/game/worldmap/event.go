package worldmap

import "fmt"

// EventType enumerates the kinds of positioned map triggers.
type EventType string

// Map event types.
const (
	EventSavePoint   EventType = "save_point"
	EventTreasure    EventType = "treasure"
	EventCollectible EventType = "collectible"
	EventTeleport    EventType = "teleport"
	EventTrigger     EventType = "trigger"
	EventBattle      EventType = "battle"
	EventShop        EventType = "shop"
	EventInn         EventType = "inn"
)

// ItemGrant is an item id + quantity pair inside a treasure payload.
type ItemGrant struct {
	ItemID   string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// TreasurePayload is the contents of a treasure chest event.
type TreasurePayload struct {
	Gold   int         `yaml:"gold"`
	Items  []ItemGrant `yaml:"items"`
	Shards []string    `yaml:"shards"`
}

// CollectiblePayload is a single pickup, optionally gated by an active quest.
type CollectiblePayload struct {
	ItemID string `yaml:"item"`
	// RequiredQuest gates collection: when non-empty the item can only be
	// collected (and blocks movement) while that quest is active.
	RequiredQuest string `yaml:"required_quest"`
}

// TeleportPayload moves the player to a cell on another map.
type TeleportPayload struct {
	ToMap  string `yaml:"to_map"`
	ToX    int    `yaml:"to_x"`
	ToY    int    `yaml:"to_y"`
	Facing Facing `yaml:"facing"`
}

// TriggerPayload names a Lua hook run when the player steps on the event.
type TriggerPayload struct {
	// Hook is the Lua global function invoked in the scripting sandbox.
	Hook string `yaml:"hook"`
	// Once marks the trigger as consumed after its first firing.
	Once bool `yaml:"once"`
}

// BattlePayload starts a scripted battle with a fixed enemy roster.
type BattlePayload struct {
	Enemies []string `yaml:"enemies"`
	// Unfleeable blocks the flee action for this battle.
	Unfleeable bool `yaml:"unfleeable"`
}

// ShopPayload opens the identified shop.
type ShopPayload struct {
	ShopID string `yaml:"shop"`
}

// InnPayload offers a paid full-party rest.
type InnPayload struct {
	Price int `yaml:"price"`
}

// MapEvent is a static, positioned, typed trigger on a map. Exactly one
// payload field is set, matching Type; handlers switch on Type and read only
// their own variant.
type MapEvent struct {
	// ID uniquely identifies this event within the map. Consumed-event
	// tracking keys off this id.
	ID string
	// X, Y is the cell the event occupies.
	X int
	Y int
	// Type selects the payload variant.
	Type EventType

	Treasure    *TreasurePayload
	Collectible *CollectiblePayload
	Teleport    *TeleportPayload
	Trigger     *TriggerPayload
	Battle      *BattlePayload
	Shop        *ShopPayload
	Inn         *InnPayload
}

// BlocksMovement reports whether an unconsumed instance of this event blocks
// the player from stepping onto its cell. Treasure chests and save points
// always block; collectibles block only while their required quest is active
// (questActive reports that). All other event types are walk-over triggers.
func (e *MapEvent) BlocksMovement(consumed bool, questActive func(questID string) bool) bool {
	if consumed {
		return false
	}
	switch e.Type {
	case EventTreasure, EventSavePoint:
		return true
	case EventCollectible:
		if e.Collectible == nil || e.Collectible.RequiredQuest == "" {
			return false
		}
		return questActive(e.Collectible.RequiredQuest)
	default:
		return false
	}
}

// validatePayload checks that exactly the payload matching Type is set.
func (e *MapEvent) validatePayload() error {
	count := 0
	for _, set := range []bool{
		e.Treasure != nil, e.Collectible != nil, e.Teleport != nil,
		e.Trigger != nil, e.Battle != nil, e.Shop != nil, e.Inn != nil,
	} {
		if set {
			count++
		}
	}

	switch e.Type {
	case EventSavePoint:
		if count != 0 {
			return fmt.Errorf("save_point event must not carry a payload")
		}
		return nil
	case EventTreasure:
		if e.Treasure == nil || count != 1 {
			return fmt.Errorf("treasure event must carry exactly the treasure payload")
		}
		return nil
	case EventCollectible:
		if e.Collectible == nil || count != 1 {
			return fmt.Errorf("collectible event must carry exactly the collectible payload")
		}
		if e.Collectible.ItemID == "" {
			return fmt.Errorf("collectible event must name an item")
		}
		return nil
	case EventTeleport:
		if e.Teleport == nil || count != 1 {
			return fmt.Errorf("teleport event must carry exactly the teleport payload")
		}
		if e.Teleport.ToMap == "" {
			return fmt.Errorf("teleport event must name a destination map")
		}
		return nil
	case EventTrigger:
		if e.Trigger == nil || count != 1 {
			return fmt.Errorf("trigger event must carry exactly the trigger payload")
		}
		if e.Trigger.Hook == "" {
			return fmt.Errorf("trigger event must name a hook")
		}
		return nil
	case EventBattle:
		if e.Battle == nil || count != 1 {
			return fmt.Errorf("battle event must carry exactly the battle payload")
		}
		if len(e.Battle.Enemies) == 0 {
			return fmt.Errorf("battle event must list at least one enemy")
		}
		return nil
	case EventShop:
		if e.Shop == nil || count != 1 {
			return fmt.Errorf("shop event must carry exactly the shop payload")
		}
		if e.Shop.ShopID == "" {
			return fmt.Errorf("shop event must name a shop")
		}
		return nil
	case EventInn:
		if e.Inn == nil || count != 1 {
			return fmt.Errorf("inn event must carry exactly the inn payload")
		}
		if e.Inn.Price < 0 {
			return fmt.Errorf("inn price must be >= 0")
		}
		return nil
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}
