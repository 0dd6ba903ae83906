package logger

import (
	"reflect"
	"testing"
)

func Test_sanitizeKVs(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{"empty", nil, nil},
		{"plain", []interface{}{"guild_id", "1"}, []interface{}{"guild_id", "1"}},
		{"token", []interface{}{"platform_token", "abc", "code", "x"}, []interface{}{"platform_token", "[REDACTED]", "code", "x"}},
		{"secret", []interface{}{"Relay_Secret", "abc"}, []interface{}{"Relay_Secret", "[REDACTED]"}},
		{"dangling", []interface{}{"a", 1, "b"}, []interface{}{"a", 1, "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeKVs(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sanitizeKVs() = %v, want %v", got, tt.want)
			}
		})
	}
}
