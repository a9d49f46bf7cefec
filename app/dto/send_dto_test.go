package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecipientList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"newline separated", "0612345678\n0712345678", []string{"0612345678", "0712345678"}},
		{"comma separated", "0612345678,0712345678", []string{"0612345678", "0712345678"}},
		{"mixed with blanks", "0612345678,\n\n 0712345678 ,,\r\n+212698765432", []string{"0612345678", "0712345678", "+212698765432"}},
		{"empty", "", []string{}},
		{"only separators", ",\n,\r\n", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseRecipientList(tc.in))
		})
	}
}
