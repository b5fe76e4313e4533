package main

import "github.com/aalvaropc/pdu-exporter/internal/cli"

func main() {
	cli.Execute()
}
