package main

import (
	// Register Plugins via side-effects
	_ "subclash/internal/sources/file"
	_ "subclash/internal/sources/http"
)

func main() {
	Execute()
}
