package forward

import (
	"errors"
	"testing"
)

func TestTokenString(t *testing.T) {
	if got := ConfirmToken(-100123, 42).String(); got != "confirm_forward:-100123:42" {
		t.Fatalf("unexpected confirm data: %s", got)
	}
	if got := CancelToken().String(); got != "cancel_forward" {
		t.Fatalf("unexpected cancel data: %s", got)
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Token
		wantErr bool
	}{
		{name: "confirm", data: "confirm_forward:555:7", want: ConfirmToken(555, 7)},
		{name: "confirm negative chat", data: "confirm_forward:-1001234567890:12", want: ConfirmToken(-1001234567890, 12)},
		{name: "cancel", data: "cancel_forward", want: CancelToken()},
		{name: "missing message id", data: "confirm_forward:555", wantErr: true},
		{name: "extra segment", data: "confirm_forward:555:7:9", wantErr: true},
		{name: "empty segments", data: "confirm_forward::", wantErr: true},
		{name: "non numeric chat", data: "confirm_forward:abc:7", wantErr: true},
		{name: "non numeric message", data: "confirm_forward:555:x", wantErr: true},
		{name: "zero message id", data: "confirm_forward:555:0", wantErr: true},
		{name: "bare prefix", data: "confirm_forward", wantErr: true},
		{name: "cancel with payload", data: "cancel_forward:1", wantErr: true},
		{name: "unknown", data: "recall:abc", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedConfirmation) {
					t.Fatalf("expected ErrMalformedConfirmation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestTokenRoundTripFitsCallbackLimit(t *testing.T) {
	token := ConfirmToken(-1009999999999, 2147483647)
	data := token.String()
	if len(data) > 64 {
		t.Fatalf("callback data exceeds 64 bytes: %d", len(data))
	}
	parsed, err := ParseToken(data)
	if err != nil || parsed != token {
		t.Fatalf("round trip failed: %+v, %v", parsed, err)
	}
}
