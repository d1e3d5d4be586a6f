package debug

import "log/slog"

func IsDebugShowSetup() bool {
	return isDebugShowSetupSet()
}

func IsDebugVerbose() bool {
	return isDebugVerboseSet()
}

func LogLevel() slog.Level {
	if IsDebugVerbose() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
