package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := Execute(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
