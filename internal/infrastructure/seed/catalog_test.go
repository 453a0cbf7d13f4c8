package seed_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-tienda/internal/infrastructure/seed"
)

const catalogJSON = `{
  "locations": [
    {"id": "bodega", "name": "Bodega", "address": "Calle 10"},
    {"id": "piso", "name": "Piso de venta"}
  ],
  "products": [
    {"id": "camisa", "sku": "CAM-001", "name": "Camisa", "retail_price": "25000", "wholesale_price": 21000, "dozen_price": "240000"}
  ]
}`

func TestDecode(t *testing.T) {
	c, err := seed.Decode(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	require.Len(t, c.Locations, 2)
	assert.Equal(t, "Calle 10", c.Locations[0].Address)
	require.Len(t, c.Products, 1)
	p := c.Products[0]
	assert.Equal(t, "CAM-001", p.SKU)
	assert.True(t, decimal.NewFromInt(25000).Equal(p.RetailPrice))
	assert.True(t, decimal.NewFromInt(21000).Equal(p.WholesalePrice))
}

func TestDecode_Invalido(t *testing.T) {
	_, err := seed.Decode(strings.NewReader(`{"locations": [{"name": "sin id"}]}`))
	assert.Error(t, err)
	_, err = seed.Decode(strings.NewReader(`{"products": [{"name": "sin id"}]}`))
	assert.Error(t, err)
	_, err = seed.Decode(strings.NewReader(`no json`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogo.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	c, err := seed.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Products, 1)

	_, err = seed.LoadFile(filepath.Join(t.TempDir(), "no-existe.json"))
	assert.Error(t, err)
}

func TestReadProductsCSV(t *testing.T) {
	in := "id,sku,name,retail_price\ncamisa,CAM-001,Camisa,25000\ngorra,GOR-001,Gorra,\n"
	products, err := seed.ReadProductsCSV(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.True(t, decimal.NewFromInt(25000).Equal(products[0].RetailPrice))
	assert.True(t, products[1].RetailPrice.IsZero())
	assert.True(t, products[1].DozenPrice.IsZero(), "columna ausente vale cero")
}

func TestReadProductsCSV_Latin1(t *testing.T) {
	utf8 := "id,sku,name\npanuelo,PAN-001,Pañuelo de algodón\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8)
	require.NoError(t, err)

	products, err := seed.ReadProductsCSV(bytes.NewReader([]byte(encoded)), true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Pañuelo de algodón", products[0].Name)
}

func TestReadProductsCSV_Errores(t *testing.T) {
	_, err := seed.ReadProductsCSV(strings.NewReader("id,name\nx,y\n"), false)
	assert.ErrorContains(t, err, "sku")

	_, err = seed.ReadProductsCSV(strings.NewReader("id,sku,name,retail_price\nx,S,N,caro\n"), false)
	assert.ErrorContains(t, err, "línea 2")

	_, err = seed.ReadProductsCSV(strings.NewReader("id,sku,name\n,S,N\n"), false)
	assert.Error(t, err)

	_, err = seed.ReadProductsCSV(strings.NewReader(""), false)
	assert.Error(t, err)
}
