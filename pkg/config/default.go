package config

const Version = "1.0.0"

const (
	DefaultWorkers           = 10
	DefaultTimeoutMs         = 1000
	DefaultPorts             = "1-1024"
	DefaultTargetConcurrency = 4
	DefaultServerAddress     = "127.0.0.1:16868"
	DefaultLogFile           = "./logs/tcpscan.log"
)
