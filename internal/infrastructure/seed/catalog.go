// Package seed carga el catálogo inicial (ubicaciones y productos) desde archivos.
package seed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// Catalog ubicaciones y productos de referencia del motor de inventario.
type Catalog struct {
	Locations []entity.Location
	Products  []entity.Product
}

type catalogFile struct {
	Locations []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"locations"`
	Products []struct {
		ID             string          `json:"id"`
		SKU            string          `json:"sku"`
		Name           string          `json:"name"`
		RetailPrice    decimal.Decimal `json:"retail_price"`
		WholesalePrice decimal.Decimal `json:"wholesale_price"`
		DozenPrice     decimal.Decimal `json:"dozen_price"`
	} `json:"products"`
}

// LoadFile lee un catálogo JSON: {"locations": [...], "products": [...]}.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode lee un catálogo JSON desde r.
func Decode(r io.Reader) (*Catalog, error) {
	var raw catalogFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	c := &Catalog{}
	for _, l := range raw.Locations {
		if l.ID == "" {
			return nil, errors.New("catálogo: ubicación sin id")
		}
		c.Locations = append(c.Locations, entity.Location{ID: l.ID, Name: l.Name, Address: l.Address})
	}
	for _, p := range raw.Products {
		if p.ID == "" {
			return nil, errors.New("catálogo: producto sin id")
		}
		c.Products = append(c.Products, entity.Product{
			ID:             p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			RetailPrice:    p.RetailPrice,
			WholesalePrice: p.WholesalePrice,
			DozenPrice:     p.DozenPrice,
		})
	}
	return c, nil
}

// ReadProductsCSV lee productos con encabezado id,sku,name,retail_price,wholesale_price,dozen_price.
// Con latin1 el archivo se decodifica desde ISO-8859-1 (exportaciones de hojas de cálculo antiguas).
func ReadProductsCSV(r io.Reader, latin1 bool) ([]entity.Product, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "sku", "name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	price := func(rec []string, name string) (decimal.Decimal, error) {
		s := get(rec, name)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}

	var out []entity.Product
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		p := entity.Product{ID: get(rec, "id"), SKU: get(rec, "sku"), Name: get(rec, "name")}
		if p.ID == "" {
			return nil, fmt.Errorf("línea %d: producto sin id", line)
		}
		if p.RetailPrice, err = price(rec, "retail_price"); err != nil {
			return nil, fmt.Errorf("línea %d: retail_price: %w", line, err)
		}
		if p.WholesalePrice, err = price(rec, "wholesale_price"); err != nil {
			return nil, fmt.Errorf("línea %d: wholesale_price: %w", line, err)
		}
		if p.DozenPrice, err = price(rec, "dozen_price"); err != nil {
			return nil, fmt.Errorf("línea %d: dozen_price: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}
