package vocab

import (
	"errors"
	"fmt"
)

// ErrConfig matches every construction-time failure of the reference stores.
var ErrConfig = errors.New("vocabulary configuration error")

// ConfigError reports bad reference data: an alias pointing outside the
// vocabulary, an empty vocabulary, an unreadable bundle file.
type ConfigError struct {
	Source string // store or file that failed, e.g. "aliases"
	Key    string // offending entry, if any
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %q: %v", e.Source, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfig) match any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

func configErr(source, key string, format string, args ...any) *ConfigError {
	return &ConfigError{Source: source, Key: key, Err: fmt.Errorf(format, args...)}
}
