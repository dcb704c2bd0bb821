package main

import (
	"os"

	"github.com/Hedius/clickhouse-backup/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
