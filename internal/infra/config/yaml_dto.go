package config

// YAMLConfig is the optional config file. Pointer fields distinguish
// "absent" from zero values so defaults survive partial files.
type YAMLConfig struct {
	PDU struct {
		Address               *string `yaml:"address"`
		Port                  *int    `yaml:"port"`
		Scheme                *string `yaml:"scheme"`
		Path                  *string `yaml:"path"`
		RequestTimeoutSeconds *int    `yaml:"request_timeout_seconds"`
		MaxDocumentBytes      *int64  `yaml:"max_document_bytes"`
		InsecureSkipVerify    *bool   `yaml:"insecure_skip_verify"`
	} `yaml:"pdu"`

	PollingIntervalSeconds *int `yaml:"polling_interval_seconds"`

	Listen struct {
		Address *string `yaml:"address"`
		Port    *int    `yaml:"port"`
	} `yaml:"listen"`

	Metrics struct {
		DropStale *bool `yaml:"drop_stale"`
	} `yaml:"metrics"`

	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
		File   *string `yaml:"file"`
	} `yaml:"log"`
}
