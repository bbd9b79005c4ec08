package data

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/openrift/riftd/internal/game/geo"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

//go:embed defaults/*.json
var defaultFS embed.FS

// Tables is the full set of static content, loaded once and read-only after.
type Tables struct {
	Skills    map[string]*SkillTemplate
	Mobs      map[string]*MobTemplate
	Spawns    []SpawnEntry
	Obstacles []geo.Rect

	// StarterSkills are unlocked for every new character.
	StarterSkills []string
}

// Skill returns the template for an id, nil when unknown.
func (t *Tables) Skill(id string) *SkillTemplate {
	return t.Skills[id]
}

// MobTemplate returns the template for an id, nil when unknown.
func (t *Tables) MobTemplate(id string) *MobTemplate {
	return t.Mobs[id]
}

// Load reads the content tables from dir. Any file missing from dir falls
// back to the embedded defaults, so a bare checkout boots a playable world.
// Every file is schema-validated before decoding; a table that fails
// validation aborts startup rather than producing a half-formed world.
func Load(dir string) (*Tables, error) {
	t := &Tables{
		Skills: make(map[string]*SkillTemplate),
		Mobs:   make(map[string]*MobTemplate),
	}

	var skillsFile struct {
		Starter []string         `json:"starter"`
		Skills  []*SkillTemplate `json:"skills"`
	}
	if err := loadTable(dir, "skills.json", &skillsFile); err != nil {
		return nil, err
	}
	for _, s := range skillsFile.Skills {
		if s.Status != nil {
			st, err := parseStatusType(s.Status.TypeName)
			if err != nil {
				return nil, fmt.Errorf("skill %s: %w", s.ID, err)
			}
			s.Status.Type = st
		}
		if err := validateSkill(s); err != nil {
			return nil, fmt.Errorf("skill %s: %w", s.ID, err)
		}
		t.Skills[s.ID] = s
	}
	t.StarterSkills = skillsFile.Starter
	for _, id := range t.StarterSkills {
		if t.Skills[id] == nil {
			return nil, fmt.Errorf("starter skill %s not defined", id)
		}
	}

	var mobsFile struct {
		Mobs []*MobTemplate `json:"mobs"`
	}
	if err := loadTable(dir, "mobs.json", &mobsFile); err != nil {
		return nil, err
	}
	for _, m := range mobsFile.Mobs {
		t.Mobs[m.ID] = m
	}

	var spawnsFile struct {
		Spawns []SpawnEntry `json:"spawns"`
	}
	if err := loadTable(dir, "spawns.json", &spawnsFile); err != nil {
		return nil, err
	}
	t.Spawns = spawnsFile.Spawns
	for _, sp := range t.Spawns {
		if t.Mobs[sp.Template] == nil {
			return nil, fmt.Errorf("spawn references unknown mob template %s", sp.Template)
		}
	}

	var obstaclesFile struct {
		Obstacles []geo.Rect `json:"obstacles"`
	}
	if err := loadTable(dir, "obstacles.json", &obstaclesFile); err != nil {
		return nil, err
	}
	t.Obstacles = obstaclesFile.Obstacles

	return t, nil
}

// LoadDefaults loads only the embedded tables. Tests use this.
func LoadDefaults() (*Tables, error) {
	return Load("")
}

func validateSkill(s *SkillTemplate) error {
	switch s.Category {
	case CategoryProjectile:
		if s.Projectile == nil {
			return fmt.Errorf("projectile skill missing projectile spec")
		}
		if s.Projectile.Speed <= 0 || s.Projectile.MaxDistance <= 0 {
			return fmt.Errorf("projectile spec needs positive speed and max_distance")
		}
		if s.Projectile.MaxPierce < 1 {
			s.Projectile.MaxPierce = 1
		}
	case CategoryAura:
		if s.AuraRadius <= 0 {
			return fmt.Errorf("aura skill needs positive aura_radius")
		}
	}
	if s.Variance < 0 || s.Variance > 1 {
		return fmt.Errorf("variance %v outside [0, 1]", s.Variance)
	}
	return nil
}

// loadTable reads dir/name (or the embedded default), validates it against
// schemas/name-derived schema and decodes into out.
func loadTable(dir, name string, out any) error {
	raw, err := readTable(dir, name)
	if err != nil {
		return err
	}

	schemaName := "schemas/" + name[:len(name)-len(".json")] + ".schema.json"
	schemaRaw, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return fmt.Errorf("reading embedded schema %s: %w", schemaName, err)
	}
	schema, err := jsonschema.CompileString(schemaName, string(schemaRaw))
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", schemaName, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validating %s: %w", name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func readTable(dir, name string) ([]byte, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	raw, err := defaultFS.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded default %s: %w", name, err)
	}
	return raw, nil
}
