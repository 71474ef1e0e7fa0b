// Binary mkfs-builder creates an empty file system image.
package main

import (
	"context"
	"os"

	"mvsfs/internal/cli"
)

func main() {
	os.Exit(int(cli.Run(context.Background(), "mkfs-builder", &cli.CreateCmd{}, os.Args[1:], os.Stderr)))
}
