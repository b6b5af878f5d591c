// Package catalog lee el catálogo de productos y bodegas desde XML (UTF-8 o ISO-8859-1).
// Se usa para poblar el store en memoria y para generar el script SQL de carga inicial.
package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Formato:
//
//	<catalogo>
//	  <bodegas><bodega id="WH-1" nombre="Principal"/></bodegas>
//	  <productos><producto id="P-1" sku="SKU-1" nombre="Tornillo" umbral="10" ratio_critico="0.25"/></productos>
//	</catalogo>
type document struct {
	XMLName    xml.Name `xml:"catalogo"`
	Warehouses []struct {
		ID     string `xml:"id,attr"`
		Nombre string `xml:"nombre,attr"`
	} `xml:"bodegas>bodega"`
	Products []struct {
		ID     string `xml:"id,attr"`
		SKU    string `xml:"sku,attr"`
		Nombre string `xml:"nombre,attr"`
		Umbral int64  `xml:"umbral,attr"`
		Ratio  string `xml:"ratio_critico,attr"`
	} `xml:"productos>producto"`
}

// Catalog productos y bodegas ordenados por ID.
type Catalog struct {
	Products   []entity.Product
	Warehouses []entity.Warehouse
}

// Load abre y decodifica un archivo de catálogo.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode lee el XML. Filas sin id o sin nombre se descartan; un umbral negativo o un
// ratio_critico fuera de (0, 1] es un error.
func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}

	c := &Catalog{}
	seen := map[string]bool{}
	for _, w := range doc.Warehouses {
		id, name := strings.TrimSpace(w.ID), strings.TrimSpace(w.Nombre)
		if id == "" || name == "" || seen["w:"+id] {
			continue
		}
		seen["w:"+id] = true
		c.Warehouses = append(c.Warehouses, entity.Warehouse{ID: id, Name: name})
	}
	for _, p := range doc.Products {
		id, name := strings.TrimSpace(p.ID), strings.TrimSpace(p.Nombre)
		if id == "" || name == "" || seen["p:"+id] {
			continue
		}
		if p.Umbral < 0 {
			return nil, fmt.Errorf("catálogo: producto %s con umbral negativo", id)
		}
		ratio, err := parseRatio(p.Ratio)
		if err != nil {
			return nil, fmt.Errorf("catálogo: producto %s: %w", id, err)
		}
		seen["p:"+id] = true
		c.Products = append(c.Products, entity.Product{
			ID:                id,
			SKU:               strings.TrimSpace(p.SKU),
			Name:              name,
			LowStockThreshold: p.Umbral,
			CriticalRatio:     ratio,
		})
	}
	sort.Slice(c.Warehouses, func(i, j int) bool { return c.Warehouses[i].ID < c.Warehouses[j].ID })
	sort.Slice(c.Products, func(i, j int) bool { return c.Products[i].ID < c.Products[j].ID })
	return c, nil
}

// WriteSQL escribe el script de carga (idempotente: actualiza nombre y umbral si ya existen).
func (c *Catalog) WriteSQL(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de bodegas y productos\n\n")
	if len(c.Warehouses) > 0 {
		b.WriteString("INSERT INTO warehouses (id, name) VALUES\n")
		for i, wh := range c.Warehouses {
			fmt.Fprintf(&b, "  ('%s', '%s')%s\n", escapeSQL(wh.ID), escapeSQL(wh.Name), sep(i, len(c.Warehouses)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n\n")
	}
	if len(c.Products) > 0 {
		b.WriteString("INSERT INTO products (id, sku, name, low_stock_threshold, critical_ratio) VALUES\n")
		for i, p := range c.Products {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %d, %s)%s\n",
				escapeSQL(p.ID), escapeSQL(p.SKU), escapeSQL(p.Name), p.LowStockThreshold,
				ratioSQL(p.CriticalRatio), sep(i, len(c.Products)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name,\n")
		b.WriteString("  low_stock_threshold = EXCLUDED.low_stock_threshold, critical_ratio = EXCLUDED.critical_ratio;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func parseRatio(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("ratio_critico %q: %w", s, err)
	}
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NullDecimal{}, fmt.Errorf("ratio_critico %s fuera de (0, 1]", d)
	}
	return decimal.NewNullDecimal(d.Round(3)), nil
}

func ratioSQL(r decimal.NullDecimal) string {
	if !r.Valid {
		return "NULL"
	}
	return r.Decimal.StringFixed(3)
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
