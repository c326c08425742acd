package config

import (
	"fmt"
	"os"
	"strings"

	"iisctl/pkg/errors"
)

// LookupFunc reads an environment variable; os.LookupEnv has this shape
type LookupFunc func(key string) (string, bool)

// ServerIdentifier picks the instance ID or server name to act on.
// An explicit argument wins; otherwise envVar is read through lookup (os.LookupEnv when nil).
func ServerIdentifier(arg, envVar string, lookup LookupFunc) (string, error) {
	if id := strings.TrimSpace(arg); id != "" {
		return id, nil
	}

	if envVar == "" {
		envVar = DefaultServerEnvVar
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if value, ok := lookup(envVar); ok {
		if id := strings.TrimSpace(value); id != "" {
			return id, nil
		}
	}

	return "", errors.NewConfigError(
		fmt.Sprintf("no server specified: pass an instance ID or server name, or set %s", envVar), nil).
		WithContext("env_var", envVar)
}
