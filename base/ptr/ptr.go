package ptr

// String return a pointer to the input value
func String(value string) *string {
	return &value
}

// Int return a pointer to the input value
func Int(value int) *int {
	return &value
}

// Int64 return a pointer to the input value
func Int64(value int64) *int64 {
	return &value
}

// Bool return a pointer to the input value
func Bool(value bool) *bool {
	return &value
}

// IntValue returns the pointed value, or 0 for nil
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// BoolValue returns the pointed value, or false for nil
func BoolValue(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
