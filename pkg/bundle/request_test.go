package bundle

import (
	"errors"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name        string
		request     Request
		expectError bool
	}{
		{
			name:    "valid date request",
			request: Request{Type: TypeDate, Date: "2024-03-05"},
		},
		{
			name:    "valid range request",
			request: Request{Type: TypeOrderRange, Start: 100, End: 200},
		},
		{
			name:    "single-order range",
			request: Request{Type: TypeOrderRange, Start: 150, End: 150},
		},
		{
			name:        "unknown type",
			request:     Request{Type: "week", Date: "2024-03-05"},
			expectError: true,
		},
		{
			name:        "malformed date",
			request:     Request{Type: TypeDate, Date: "05.03.2024"},
			expectError: true,
		},
		{
			name:        "missing date",
			request:     Request{Type: TypeDate},
			expectError: true,
		},
		{
			name:        "inverted range",
			request:     Request{Type: TypeOrderRange, Start: 200, End: 100},
			expectError: true,
		},
		{
			name:        "non-positive start",
			request:     Request{Type: TypeOrderRange, Start: 0, End: 100},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected validation error but got nil")
				}
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("Expected ErrInvalidRequest, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRequestDetail(t *testing.T) {
	dateReq := Request{Type: TypeDate, Date: "2024-03-05"}
	if got := dateReq.Detail(); got != "2024-03-05" {
		t.Errorf("Detail() = %q, want %q", got, "2024-03-05")
	}

	rangeReq := Request{Type: TypeOrderRange, Start: 100, End: 200}
	if got := rangeReq.Detail(); got != "orders 100-200" {
		t.Errorf("Detail() = %q, want %q", got, "orders 100-200")
	}
}
