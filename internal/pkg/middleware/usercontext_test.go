package middleware

import "testing"

func TestSessionUserID(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		want   uint
		wantOK bool
	}{
		{name: "uint", value: uint(7), want: 7, wantOK: true},
		{name: "uint64", value: uint64(7), want: 7, wantOK: true},
		{name: "int", value: 7, want: 7, wantOK: true},
		{name: "int64", value: int64(7), want: 7, wantOK: true},
		{name: "float from json decode", value: float64(7), want: 7, wantOK: true},
		{name: "zero id", value: uint(0), wantOK: false},
		{name: "negative", value: -1, wantOK: false},
		{name: "fractional", value: 7.5, wantOK: false},
		{name: "string", value: "7", wantOK: false},
		{name: "nil", value: nil, wantOK: false},
		{name: "bool", value: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sessionUserID(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("sessionUserID(%#v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("sessionUserID(%#v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
