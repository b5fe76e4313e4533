package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const Name = "pdu-exporter"

func String() string {
	return fmt.Sprintf("%s %s (commit=%s, date=%s)", Name, Version, Commit, Date)
}
