package ports

// CodepageSource reports the legacy codepage the host environment is
// configured with (the OEM codepage on Windows).
type CodepageSource interface {
	ActiveCodepage() uint32
}

// ModuleLocator resolves the plugin's own file-system path by
// platform-native means, independently of what the host passes to load.
type ModuleLocator interface {
	ModulePath() (string, error)
}
