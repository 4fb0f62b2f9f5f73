package main

import (
	"github.com/comus-party/justeprix/internal/cli"
)

func main() {
	cli.Execute()
}
