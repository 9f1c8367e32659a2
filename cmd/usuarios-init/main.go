// Command usuarios-init creates the usuarios table if needed, inserts the two
// seed rows and prints the whole table.
package main

import (
	"os"

	"github.com/bgunnarsson/usuarios/internal/app"
)

func main() {
	os.Exit(app.Main(app.ReportInit, os.Args[1:], os.Stdout, os.Stderr))
}
