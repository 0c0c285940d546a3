package errors

import (
	"strings"
	"testing"
)

func TestValidateIDColumn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantCode Code
	}{
		{"valid simple", "seg_id", false, ""},
		{"valid comid", "COMID", false, ""},
		{"empty", "", true, ErrCodeInvalidInput},
		{"reserved exact", "strm_id", true, ErrCodeReservedColumn},
		{"reserved case insensitive", "STRM_ID", true, ErrCodeReservedColumn},
		{"control character", "seg\x00id", true, ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIDColumn(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateIDColumn(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, tt.wantCode) {
				t.Errorf("ValidateIDColumn(%q) code = %v, want %v", tt.input, GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestValidateColumnName(t *testing.T) {
	if err := ValidateColumnName("down_node"); err != nil {
		t.Errorf("ValidateColumnName(down_node) = %v, want nil", err)
	}
	if err := ValidateColumnName(""); err == nil {
		t.Error("ValidateColumnName(empty) = nil, want error")
	}
	if err := ValidateColumnName("a\tb"); err == nil {
		t.Error("ValidateColumnName(control char) = nil, want error")
	}
}

func TestValidateStorePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "network.strm", false},
		{"valid nested", "out/network.strm", false},
		{"empty", "", true},
		{"null byte", "net\x00work", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStorePath error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
