package service

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/precha888/ecount-chatbot/internal/catalog/model"
	"github.com/precha888/ecount-chatbot/internal/fileio"
)

// Catalog is the product list loaded at startup. It is never mutated after
// construction, so handlers share it without locking.
type Catalog struct {
	products []model.Product
}

// New builds a catalog from already-parsed rows, keeping their order.
func New(rows []map[string]string) *Catalog {
	c := &Catalog{products: make([]model.Product, 0, len(rows))}
	for _, rec := range rows {
		fields := make(map[string]string, len(rec))
		for k, v := range rec {
			fields[k] = v
		}
		c.products = append(c.products, model.Product{
			Fields:    fields,
			NormModel: Normalize(fields[model.ColModel]),
		})
	}
	return c
}

// LoadFile reads the catalog file. A missing or unreadable file is logged and
// yields an empty catalog: the service still starts and every lookup degrades
// to "not found".
func LoadFile(path string, opts fileio.Options, logger zerolog.Logger) *Catalog {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("file", path).Msg("catalog file not found")
		} else {
			logger.Error().Err(err).Str("file", path).Msg("open catalog")
		}
		return New(nil)
	}
	defer f.Close()

	rows, err := fileio.ReadAnyMaps(f, path, opts)
	if err != nil {
		logger.Error().Err(err).Str("file", path).Msg("read catalog")
		return New(nil)
	}

	c := New(rows)
	logger.Info().Str("file", path).Int("products", c.Len()).Msg("catalog loaded")
	return c
}

func (c *Catalog) Len() int { return len(c.products) }

// Products returns a copy of the rows in file order.
func (c *Catalog) Products() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// BestMatch scores query against every normalized model and returns the top hit.
// Ties go to the row that comes first in the file.
func (c *Catalog) BestMatch(query string) model.Match {
	if len(c.products) == 0 {
		return model.Match{}
	}
	q := Normalize(query)

	best := -1
	bestScore := -1.0
	for i := range c.products {
		s := WeightedRatio(q, c.products[i].NormModel)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	p := c.products[best]
	return model.Match{Product: &p, Score: bestScore}
}
