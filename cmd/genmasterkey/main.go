package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/harrylevesque/rentnest/internal/files"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// TODO(genmasterkey-rotate): re-seal stored phone numbers under a new key instead of refusing to overwrite.

func main() {
	defaultPath := filepath.Join(utils.GetDataDir(), "master.key")
	keyFile := flag.StringP("out", "o", defaultPath, "where to write the hex master key")
	flag.Parse()

	if _, err := files.GenerateMasterKey(*keyFile); err != nil {
		if errors.Is(err, files.ErrKeyExists) {
			fmt.Fprintf(os.Stderr, "Error: %s already exists. Refusing to overwrite.\n", *keyFile)
		} else {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *keyFile, err)
		}
		os.Exit(1)
	}
	fmt.Printf("Master key written to %s\n", *keyFile)
}
