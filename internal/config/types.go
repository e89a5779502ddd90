package config

// Config is the validated hmacsvc configuration. It is built once at startup
// and never mutated afterwards.
type Config struct {
	HMACAlg         string      `yaml:"hmac_alg" json:"hmac_alg"`
	Secret          string      `yaml:"secret" json:"secret"`
	LogLevel        string      `yaml:"log_level" json:"log_level"`
	Listen          string      `yaml:"listen" json:"listen"`
	MaxMsgSizeBytes int         `yaml:"max_msg_size_bytes" json:"max_msg_size_bytes"`
	Audit           AuditConfig `yaml:"audit,omitempty" json:"audit,omitempty"`

	// Derived during Load.
	SecretBytes []byte `yaml:"-" json:"-"`
	ListenHost  string `yaml:"-" json:"-"`
	ListenPort  int    `yaml:"-" json:"-"`
	SourcePath  string `yaml:"-" json:"-"`
}

// AuditConfig enables the optional SQLite audit sink.
type AuditConfig struct {
	// Path is the SQLite database file. Empty disables the sink.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// rawConfig mirrors Config with pointers so missing keys can be told apart
// from zero values.
type rawConfig struct {
	HMACAlg         *string     `yaml:"hmac_alg"`
	Secret          *string     `yaml:"secret"`
	LogLevel        *string     `yaml:"log_level"`
	Listen          *string     `yaml:"listen"`
	MaxMsgSizeBytes *int        `yaml:"max_msg_size_bytes"`
	Audit           AuditConfig `yaml:"audit"`
}

// ChecksumManifest is the on-disk format of the .checksums file.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}
