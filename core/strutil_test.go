package core

import "testing"

func TestUtoa(t *testing.T) {
	testCases := []struct {
		in   uint32
		want string
	}{
		{0, "0"},
		{9, "9"},
		{10, "10"},
		{115200, "115200"},
		{4294967295, "4294967295"},
	}
	for _, tc := range testCases {
		if got := Utoa(tc.in); got != tc.want {
			t.Errorf("Utoa(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
