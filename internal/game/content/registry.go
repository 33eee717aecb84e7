package content

import "fmt"

// Registry holds all loaded catalog definitions indexed by ID. It is the
// read-only collaborator the engine queries for item/shard/enemy/class/shop/
// quest/dialogue lookups; unknown ids return (nil, false).
type Registry struct {
	items     map[string]*ItemDef
	shards    map[string]*ShardDef
	enemies   map[string]*EnemyDef
	classes   map[string]*ClassDef
	shops     map[string]*ShopDef
	quests    map[string]*QuestDef
	dialogues map[string]*DialogueDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		items:     make(map[string]*ItemDef),
		shards:    make(map[string]*ShardDef),
		enemies:   make(map[string]*EnemyDef),
		classes:   make(map[string]*ClassDef),
		shops:     make(map[string]*ShopDef),
		quests:    make(map[string]*QuestDef),
		dialogues: make(map[string]*DialogueDef),
	}
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil and must have passed Validate.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// RegisterShard adds d to the registry.
//
// Postcondition: Shard(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterShard(d *ShardDef) error {
	if _, exists := r.shards[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterShard: shard ID %q already registered", d.ID)
	}
	r.shards[d.ID] = d
	return nil
}

// Shard returns the ShardDef for the given id and whether it was found.
func (r *Registry) Shard(id string) (*ShardDef, bool) {
	d, ok := r.shards[id]
	return d, ok
}

// RegisterEnemy adds d to the registry.
//
// Postcondition: Enemy(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterEnemy(d *EnemyDef) error {
	if _, exists := r.enemies[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterEnemy: enemy ID %q already registered", d.ID)
	}
	r.enemies[d.ID] = d
	return nil
}

// Enemy returns the EnemyDef for the given id and whether it was found.
func (r *Registry) Enemy(id string) (*EnemyDef, bool) {
	d, ok := r.enemies[id]
	return d, ok
}

// RegisterClass adds d to the registry.
//
// Postcondition: Class(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterClass(d *ClassDef) error {
	if _, exists := r.classes[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterClass: class ID %q already registered", d.ID)
	}
	r.classes[d.ID] = d
	return nil
}

// Class returns the ClassDef for the given id and whether it was found.
func (r *Registry) Class(id string) (*ClassDef, bool) {
	d, ok := r.classes[id]
	return d, ok
}

// RegisterShop adds d to the registry.
//
// Postcondition: Shop(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterShop(d *ShopDef) error {
	if _, exists := r.shops[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterShop: shop ID %q already registered", d.ID)
	}
	r.shops[d.ID] = d
	return nil
}

// Shop returns the ShopDef for the given id and whether it was found.
func (r *Registry) Shop(id string) (*ShopDef, bool) {
	d, ok := r.shops[id]
	return d, ok
}

// RegisterQuest adds d to the registry.
//
// Postcondition: Quest(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterQuest(d *QuestDef) error {
	if _, exists := r.quests[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterQuest: quest ID %q already registered", d.ID)
	}
	r.quests[d.ID] = d
	return nil
}

// Quest returns the QuestDef for the given id and whether it was found.
func (r *Registry) Quest(id string) (*QuestDef, bool) {
	d, ok := r.quests[id]
	return d, ok
}

// RegisterDialogue adds d to the registry.
//
// Postcondition: Dialogue(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterDialogue(d *DialogueDef) error {
	if _, exists := r.dialogues[d.ID]; exists {
		return fmt.Errorf("content: Registry.RegisterDialogue: dialogue ID %q already registered", d.ID)
	}
	r.dialogues[d.ID] = d
	return nil
}

// Dialogue returns the DialogueDef for the given id and whether it was found.
func (r *Registry) Dialogue(id string) (*DialogueDef, bool) {
	d, ok := r.dialogues[id]
	return d, ok
}

// Counts returns the number of registered definitions per catalog, for
// startup logging.
func (r *Registry) Counts() map[string]int {
	return map[string]int{
		"items":     len(r.items),
		"shards":    len(r.shards),
		"enemies":   len(r.enemies),
		"classes":   len(r.classes),
		"shops":     len(r.shops),
		"quests":    len(r.quests),
		"dialogues": len(r.dialogues),
	}
}
