package validator

import (
	"strings"
	"testing"
)

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		wantField string
	}{
		{"valid", "alice", "Password1", ""},
		{"empty username", "", "Password1", "username"},
		{"short username", "ab", "Password1", "username"},
		{"long username", strings.Repeat("a", 51), "Password1", "username"},
		{"bad characters", "ali ce!", "Password1", "username"},
		{"short password", "alice", "Pw1", "password"},
		{"no uppercase", "alice", "password1", "password"},
		{"no digit", "alice", "Passwords", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateRegister(tt.username, tt.password)
			if tt.wantField == "" {
				if errs.HasErrors() {
					t.Fatalf("unexpected errors: %v", errs)
				}
				return
			}
			if _, ok := errs[tt.wantField]; !ok {
				t.Fatalf("errors = %v, want field %q", errs, tt.wantField)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	if errs := ValidateMessage("hello", 100); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs := ValidateMessage("   ", 100); errs["content"] != "Message content required" {
		t.Fatalf("errors = %v", errs)
	}
	if errs := ValidateMessage(strings.Repeat("x", 101), 100); !errs.HasErrors() {
		t.Fatal("over-length content accepted")
	}
	// A zero max disables the length check.
	if errs := ValidateMessage(strings.Repeat("x", 5000), 0); errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidationErrorsError(t *testing.T) {
	errs := make(ValidationErrors)
	errs.Add("username", "Username is required")
	errs.Add("password", "Password must be at least 8 characters")

	got := errs.Error()
	want := "password: Password must be at least 8 characters; username: Username is required"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
