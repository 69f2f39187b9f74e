// Package taxonomy supplies the fixed module folder layout for each
// submission region. Definitions ship as embedded YAML so the set of
// regions is known at build time and lookups never touch I/O.
package taxonomy

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"dossier/internal/domain/models/organizer"
)

//go:embed regions/*.yaml
var regionFiles embed.FS

// regionDefinition mirrors one regions/*.yaml file.
type regionDefinition struct {
	Region  string `yaml:"region"`
	Name    string `yaml:"name"`
	Modules []struct {
		Code  string `yaml:"code"`
		Title string `yaml:"title"`
	} `yaml:"modules"`
}

// Region holds the resolved taxonomy for one submission region.
type Region struct {
	Code    string
	Name    string
	Modules []organizer.ModuleFolder
}

// Provider resolves submission regions to their fixed module folders.
type Provider struct {
	regions map[string]Region
	codes   []string // region codes in file order
}

// NewProvider loads every embedded region definition.
func NewProvider() (*Provider, error) {
	p := &Provider{regions: make(map[string]Region)}

	for _, code := range []string{"us", "eu", "jp"} {
		if err := p.loadRegionFile(code); err != nil {
			return nil, fmt.Errorf("load %s taxonomy: %w", code, err)
		}
	}

	return p, nil
}

func (p *Provider) loadRegionFile(code string) error {
	data, err := regionFiles.ReadFile(fmt.Sprintf("regions/%s.yaml", code))
	if err != nil {
		return fmt.Errorf("read region file: %w", err)
	}

	var def regionDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("unmarshal region file: %w", err)
	}
	if def.Region != code {
		return fmt.Errorf("region file %s declares region %q", code, def.Region)
	}
	if len(def.Modules) == 0 {
		return fmt.Errorf("region %q defines no modules", code)
	}

	region := Region{Code: def.Region, Name: def.Name}
	for _, m := range def.Modules {
		region.Modules = append(region.Modules, organizer.ModuleFolder{
			Code:  m.Code,
			Title: m.Title,
		})
	}

	p.regions[code] = region
	p.codes = append(p.codes, code)
	return nil
}

// Modules returns the ordered module folders for a region.
func (p *Provider) Modules(region string) ([]organizer.ModuleFolder, error) {
	r, ok := p.regions[region]
	if !ok {
		return nil, fmt.Errorf("unknown submission region %q", region)
	}
	return r.Modules, nil
}

// Regions returns every known region in definition order.
func (p *Provider) Regions() []Region {
	out := make([]Region, 0, len(p.codes))
	for _, code := range p.codes {
		out = append(out, p.regions[code])
	}
	return out
}
