package command

const (
	JSONOutputFlag = "json"
	LogLevelFlag   = "log-level"
	JSONLogFlag    = "json-log"
)

const DefaultLogLevel = "INFO"
