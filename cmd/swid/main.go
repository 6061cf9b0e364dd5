// Command swid identifies songwriter, composer, and publisher credits for
// music catalog tracks.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "swid:", err)
		}
		os.Exit(1)
	}
}
