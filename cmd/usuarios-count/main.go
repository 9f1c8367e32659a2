// Command usuarios-count prints how many usuarios there are per sex.
package main

import (
	"os"

	"github.com/bgunnarsson/usuarios/internal/app"
)

func main() {
	os.Exit(app.Main(app.ReportCount, os.Args[1:], os.Stdout, os.Stderr))
}
