package ports

// ConfigScaffolder writes starter configuration files into a directory.
type ConfigScaffolder interface {
	Scaffold(dir string, force bool) ([]string, error)
}
