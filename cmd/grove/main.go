// Command grove is the CLI companion to the grove storage SDK: it
// uploads files and folders, resolves and polls resources, and drives
// authorized edits and deletes.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(submain(context.Background()))
}
