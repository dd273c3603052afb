package config

// ConfigInitError reports a config file that could not be created or loaded
// during startup.
type ConfigInitError struct {
	msg string
	err error
}

func (e *ConfigInitError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *ConfigInitError) Unwrap() error {
	return e.err
}
