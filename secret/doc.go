// Package secret resolves API keys and other credentials referenced from
// configuration.
//
// A configured value is first expanded strictly against the environment
// (see ExpandEnvStrict) and then any "secretref:" references are handed to
// the named Provider:
//
//	${OPENWEATHER_API_KEY}                  environment variable, must be set
//	secretref:env:OPENWEATHER_API_KEY       same, through the env provider
//	secretref:file:/run/secrets/openweather file contents, trimmed
//
// NewDefaultResolver registers the env and file providers.
package secret
