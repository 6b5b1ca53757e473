package config

import "fmt"

const (
	warnInvalidEnvValueFmt = "Warning: invalid %s value '%s', using default"
)

type messageBuilders struct {
	invalidEnvValue func(key, value string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		invalidEnvValue: func(key, value string) string {
			return fmt.Sprintf(warnInvalidEnvValueFmt, key, value)
		},
	}
}

var messages = newMessageBuilders()
