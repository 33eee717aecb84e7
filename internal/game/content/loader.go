package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the top-level YAML structure for catalog files. A file
// may carry any subset of the catalogs; files in a directory are merged.
type yamlCatalogFile struct {
	Items     []*ItemDef      `yaml:"items"`
	Shards    []*ShardDef     `yaml:"shards"`
	Enemies   []*EnemyDef     `yaml:"enemies"`
	Classes   []*ClassDef     `yaml:"classes"`
	Shops     []*ShopDef      `yaml:"shops"`
	Quests    []*QuestDef     `yaml:"quests"`
	Dialogues []yamlDialogue  `yaml:"dialogues"`
}

// yamlDialogue is the YAML representation of a dialogue: nodes are authored
// as an ordered list and indexed by id on conversion.
type yamlDialogue struct {
	ID    string          `yaml:"id"`
	Start string          `yaml:"start"`
	Nodes []*DialogueNode `yaml:"nodes"`
}

// LoadCatalogBytes parses catalog YAML bytes and registers every definition
// into reg, validating each.
//
// Precondition: reg must not be nil; data must be valid catalog YAML.
// Postcondition: All definitions in data are registered, or an error names the
// first invalid or duplicate definition.
func LoadCatalogBytes(data []byte, reg *Registry) error {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing catalog YAML: %w", err)
	}

	for _, d := range file.Items {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating item: %w", err)
		}
		if err := reg.RegisterItem(d); err != nil {
			return err
		}
	}
	for _, d := range file.Shards {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating shard: %w", err)
		}
		if err := reg.RegisterShard(d); err != nil {
			return err
		}
	}
	for _, d := range file.Enemies {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating enemy: %w", err)
		}
		if err := reg.RegisterEnemy(d); err != nil {
			return err
		}
	}
	for _, d := range file.Classes {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating class: %w", err)
		}
		if err := reg.RegisterClass(d); err != nil {
			return err
		}
	}
	for _, d := range file.Shops {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating shop: %w", err)
		}
		if err := reg.RegisterShop(d); err != nil {
			return err
		}
	}
	for _, d := range file.Quests {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating quest: %w", err)
		}
		if err := reg.RegisterQuest(d); err != nil {
			return err
		}
	}
	for _, yd := range file.Dialogues {
		d := convertYAMLDialogue(yd)
		if err := d.Validate(); err != nil {
			return fmt.Errorf("validating dialogue: %w", err)
		}
		if err := reg.RegisterDialogue(d); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalogsFromDir loads and merges all YAML catalog files in a directory.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns a populated Registry or the first error encountered.
func LoadCatalogsFromDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	reg := NewRegistry()
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading catalog file %s: %w", name, err)
		}
		if err := LoadCatalogBytes(data, reg); err != nil {
			return nil, fmt.Errorf("loading catalogs from %s: %w", name, err)
		}
		loaded++
	}

	if loaded == 0 {
		return nil, fmt.Errorf("no catalog files found in %s", dir)
	}

	return reg, nil
}

// convertYAMLDialogue indexes a dialogue's node list by id.
func convertYAMLDialogue(yd yamlDialogue) *DialogueDef {
	d := &DialogueDef{
		ID:    yd.ID,
		Start: yd.Start,
		Nodes: make(map[string]*DialogueNode, len(yd.Nodes)),
	}
	for _, n := range yd.Nodes {
		d.Nodes[n.ID] = n
	}
	return d
}
