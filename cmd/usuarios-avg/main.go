// Command usuarios-avg prints the average edad per sex.
package main

import (
	"os"

	"github.com/bgunnarsson/usuarios/internal/app"
)

func main() {
	os.Exit(app.Main(app.ReportAverage, os.Args[1:], os.Stdout, os.Stderr))
}
