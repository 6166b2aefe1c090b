package env

func GetBuildVersion() VersionInfo {
	if BuildVersion == "" {
		BuildVersion = "dev"
	}
	return VersionInfo{
		BuildVersion: BuildVersion,
		Commit:       Commit,
	}
}
