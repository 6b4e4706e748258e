// snaptail previews a React component next to a live FastAPI server.
package main

import (
	"os"

	"github.com/rybarix/snaptail/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
