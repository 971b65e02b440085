// Package catalog loads the static product-name dictionary offered by
// add-product autocomplete.
package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/orderbot/internal/core/order"
	"github.com/example/orderbot/internal/ports/secondary"
)

// commentPrefix marks lines that are skipped.
const commentPrefix = "%"

// Catalog is an immutable list of product names.
type Catalog struct {
	names []string
}

// New creates a catalog from names already in memory.
func New(names []string) *Catalog {
	return &Catalog{names: append([]string(nil), names...)}
}

// LoadFile reads a dictionary file. An empty path yields an empty catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return New(nil), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open product catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read product catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse reads dictionary lines. Each entry has three space-separated leading
// fields followed by the product name; the name is the rest of the line.
// Comment lines, blank lines and lines with fewer than four fields are
// skipped.
func Parse(r io.Reader) (*Catalog, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, commentPrefix) || strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 4)
		if len(parts) != 4 {
			continue
		}
		if name := order.NormalizeProductName(parts[3]); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Catalog{names: names}, nil
}

// Names returns the dictionary in file order.
func (c *Catalog) Names() []string {
	return c.names
}

// Len returns the number of names.
func (c *Catalog) Len() int {
	return len(c.names)
}

var _ secondary.ProductCatalog = (*Catalog)(nil)
