package logger

// Component-specific logger functions

// Migration returns a logger for migration loading and collection
func Migration() Logger {
	return WithField("component", "migration")
}

// Atlas returns a logger for Atlas Cloud requests
func Atlas() Logger {
	return WithField("component", "atlas")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// Config returns a logger for configuration loading
func Config() Logger {
	return WithField("component", "config")
}
