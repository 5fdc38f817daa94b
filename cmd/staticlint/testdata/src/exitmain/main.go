package main

import "os"

func main() {
	defer cleanup()
	os.Exit(1) // want "os.Exit call is forbidden in main function: os.Exit\\(1\\)"
}

func cleanup() {
	os.Exit(2)
}
