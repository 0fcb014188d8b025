package accounts

// MapFilter is a field-projection helper handed to user sanitizers.
type MapFilter func(fields map[string]any, keys ...string) map[string]any

// UserSanitizerFunc performs additional redaction after the default Services
// strip. It receives the Omit and Pick helpers and must be pure.
type UserSanitizerFunc func(user *User, omit, pick MapFilter) *User

// Omit returns a copy of fields without the given keys.
func Omit(fields map[string]any, keys ...string) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Pick returns a copy of fields containing only the given keys.
func Pick(fields map[string]any, keys ...string) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// SanitizeUser strips provider-internal state from a copy of the user. The
// input is never mutated and sanitizing twice yields the same result.
func SanitizeUser(user *User, custom UserSanitizerFunc) *User {
	if user == nil {
		return nil
	}

	clone := *user
	clone.Services = nil
	clone.Profile = Omit(user.Profile)

	if custom != nil {
		return custom(&clone, Omit, Pick)
	}
	return &clone
}
