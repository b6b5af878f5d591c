// seed_catalog genera el script SQL para poblar products y warehouses desde un catálogo XML.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xml] [salida.sql]
// Por defecto lee catalogo.xml del directorio actual y escribe en stdout.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/inventario-stock/internal/infrastructure/catalog"
)

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	c, err := catalog.Load(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if len(os.Args) > 2 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := c.WriteSQL(out); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Catálogo %s: %d bodegas, %d productos\n", xmlPath, len(c.Warehouses), len(c.Products))
}
