package ptr

import "strings"

// PointTo creates a typed pointer of whatever you hand in as parameter
func PointTo[T any](t T) *T {
	return &t
}

func GetIntOrDefault(ptr *int, def int) int {
	if ptr == nil {
		return def
	}

	return *ptr
}

func GetInt64OrDefault(ptr *int64, def int64) int64 {
	if ptr == nil {
		return def
	}

	return *ptr
}

func GetSafeDeref[T any](ptr *T) T {
	if ptr == nil {
		return *new(T)
	}

	return *ptr
}

func IsValidStrPtr(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// EmptyToNil maps blank strings to nil.
func EmptyToNil(s *string) *string {
	if !IsValidStrPtr(s) {
		return nil
	}

	v := strings.TrimSpace(*s)

	return &v
}
