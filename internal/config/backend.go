package config

// Backend is where non-secret settings persist between runs: UserDefaults
// on macOS, a JSON file elsewhere. Values are stored as strings and parsed
// per key on load.
type Backend interface {
	Get(key string) (val string, ok bool, err error)
	Set(key, val string) error
	Delete(key string) error
}
