package debug

import "os"

const (
	DebugShowSetupKey = "DEBUG_SHOW_SETUP"
	DebugVerboseKey   = "DEBUG_VERBOSE"
)

func isDebugShowSetupSet() bool {
	return os.Getenv(DebugShowSetupKey) == "true"
}

func isDebugVerboseSet() bool {
	return os.Getenv(DebugVerboseKey) == "true"
}
