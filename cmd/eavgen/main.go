/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command eavgen generates and applies the tables behind companion stores.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
