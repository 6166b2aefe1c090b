package env

var Config struct {
	Region string
	Zone   string
}

type VersionInfo struct {
	BuildVersion string
	Commit       string
}

var BuildVersion string
var Commit string
