package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("snapshot")
	cv.Required("location", "")

	if !cv.HasErrors() {
		t.Error("Expected error for empty required field")
	}

	cv2 := NewConfigValidator("snapshot")
	cv2.Required("location", "static_graph.json")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_Ranges(t *testing.T) {
	tests := []struct {
		name    string
		run     func(*ConfigValidator)
		wantErr bool
	}{
		{"positive ok", func(cv *ConfigValidator) { cv.Positive("port", 8000) }, false},
		{"positive zero", func(cv *ConfigValidator) { cv.Positive("port", 0) }, true},
		{"range ok", func(cv *ConfigValidator) { cv.RangeInt("k", 4, 2, 32) }, false},
		{"range low", func(cv *ConfigValidator) { cv.RangeInt("k", 1, 2, 32) }, true},
		{"range high", func(cv *ConfigValidator) { cv.RangeInt("k", 33, 2, 32) }, true},
		{"duration ok", func(cv *ConfigValidator) { cv.MinDuration("read_timeout", time.Second, time.Second) }, false},
		{"duration low", func(cv *ConfigValidator) { cv.MinDuration("read_timeout", 0, time.Second) }, true},
		{"one of ok", func(cv *ConfigValidator) { cv.OneOf("level", "info", []string{"debug", "info"}) }, false},
		{"one of bad", func(cv *ConfigValidator) { cv.OneOf("level", "loud", []string{"debug", "info"}) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("test")
			tt.run(cv)
			if cv.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", cv.HasErrors(), tt.wantErr, cv.Errors())
			}
		})
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bad url")
	cv := NewConfigValidator("snapshot")
	cv.Custom("location", func() error { return sentinel })

	err := cv.Validate()
	if !errors.Is(err, sentinel) {
		t.Errorf("Validate() should wrap custom error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "snapshot.location: ") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("s3")
	cv.When(false, func(cv *ConfigValidator) { cv.Required("region", "") })
	if cv.HasErrors() {
		t.Error("When(false) should skip validations")
	}
	cv.When(true, func(cv *ConfigValidator) { cv.Required("region", "") })
	if !cv.HasErrors() {
		t.Error("When(true) should apply validations")
	}
}

func TestConfigValidator_ValidateCollectsAll(t *testing.T) {
	cv := NewConfigValidator("server")
	cv.Positive("port", -1).Required("host", "").RangeInt("k", 0, 2, 32)

	if n := len(cv.Errors()); n != 3 {
		t.Fatalf("collected %d errors, want 3", n)
	}
	msg := cv.Validate().Error()
	for _, field := range []string{"server.port", "server.host", "server.k"} {
		if !strings.Contains(msg, field) {
			t.Errorf("joined error lacks %s: %s", field, msg)
		}
	}
	if NewConfigValidator("empty").Validate() != nil {
		t.Error("no errors should validate to nil")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "spectral"); got != "spectral" {
		t.Errorf("DefaultOr = %q", got)
	}
	if got := DefaultOr(6, 4); got != 6 {
		t.Errorf("DefaultOr = %d", got)
	}
}
