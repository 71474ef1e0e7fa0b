// Binary mkfs-adder copies an image with one more file in its root directory.
package main

import (
	"context"
	"os"

	"mvsfs/internal/cli"
)

func main() {
	os.Exit(int(cli.Run(context.Background(), "mkfs-adder", &cli.InsertCmd{}, os.Args[1:], os.Stderr)))
}
