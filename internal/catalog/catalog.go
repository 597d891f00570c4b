// Package catalog loads the cashier's product list from a YAML file.
package catalog

import (
	"fmt"
	"os"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type file struct {
	Prodotti []entry `yaml:"prodotti"`
}

type entry struct {
	ID                 int    `yaml:"id"`
	Nome               string `yaml:"nome"`
	CategoriaMenu      string `yaml:"categoria_menu"`
	CategoriaDashboard string `yaml:"categoria_dashboard"`
	Prezzo             string `yaml:"prezzo"` // decimal text, e.g. "3.50"
	Quantita           int    `yaml:"quantita"`
	Disponibile        *bool  `yaml:"disponibile"`
}

func Load(path string) ([]orders.Product, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse decodes a catalog. Unavailable products are dropped; disponibile defaults to true.
func Parse(b []byte) ([]orders.Product, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]orders.Product, 0, len(f.Prodotti))
	seen := map[int]bool{}
	for i, e := range f.Prodotti {
		if e.ID <= 0 || e.Nome == "" {
			return nil, fmt.Errorf("catalog entry %d: id and nome are required", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, e.ID)
		}
		seen[e.ID] = true
		price, err := decimal.NewFromString(e.Prezzo)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): prezzo %q: %w", i, e.Nome, e.Prezzo, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog entry %d (%s): negative prezzo", i, e.Nome)
		}
		if e.Disponibile != nil && !*e.Disponibile {
			continue
		}
		out = append(out, orders.Product{
			ID:                 e.ID,
			Nome:               e.Nome,
			CategoriaMenu:      e.CategoriaMenu,
			CategoriaDashboard: e.CategoriaDashboard,
			Prezzo:             price,
			Quantita:           e.Quantita,
			Disponibile:        true,
		})
	}
	return out, nil
}
