package cfg

type Cfg struct {
	// Storage
	DBPath      string
	ProfilesDir string

	// HTTP service
	Port         string
	BaseUrl      string
	APIAccessKey string
	MaxBodyBytes int64

	// Parsing
	HTMLEntities     bool
	StrictTimestamps bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Application metadata
	Timezone string
	Version  string
}
