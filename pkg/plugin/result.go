package plugin

// RequestResult is the envelope returned by request-style capabilities.
type RequestResult struct {
	Success bool
	Message string
	Data    []Value
	Err     error
}

// Succeeded builds a successful RequestResult.
func Succeeded(message string, data ...Value) RequestResult {
	return RequestResult{Success: true, Message: message, Data: data}
}

// Failure builds a failed RequestResult.
func Failure(message string) RequestResult {
	return RequestResult{Success: false, Message: message}
}

// FailureFrom builds a failed RequestResult carrying err.
func FailureFrom(err error) RequestResult {
	return RequestResult{Success: false, Message: err.Error(), Err: err}
}

// ConfigResult is returned by the configuration capabilities.
type ConfigResult struct {
	Key     string
	Value   string
	Success bool
	Message string
}

// BootResult is returned by the boot registration capabilities.
type BootResult struct {
	Success bool
	UUID    string
	Message string
}

// ResourceDictionary is the host theme resource set, keyed by resource name.
type ResourceDictionary map[string]Value

// ThemeResult is returned by GetMergedDictionaries.
type ThemeResult struct {
	Success   bool
	Message   string
	Resources ResourceDictionary
}

// RequestOutcome pairs a result with the handler error for async calls.
type RequestOutcome struct {
	Result RequestResult
	Err    error
}
