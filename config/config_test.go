package config

import (
	"reflect"
	"testing"
	"time"
)

func Test_readEnvDuration(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want time.Duration
	}{
		{"unset", "", 3 * time.Second},
		{"duration", "1500ms", 1500 * time.Millisecond},
		{"seconds", "20", 20 * time.Second},
		{"garbage", "soon", 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.env)
			got := 3 * time.Second
			readEnvDuration("TEST_DURATION", &got)
			if got != tt.want {
				t.Errorf("readEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_readEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " 1, 2,,3 ")
	got := []string{"default"}
	readEnvList("TEST_LIST", &got)
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("readEnvList() = %v, want %v", got, want)
	}
}

func Test_readEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "off")
	got := true
	readEnvBool("TEST_BOOL", &got)
	if got {
		t.Error("readEnvBool(off) = true")
	}
}
