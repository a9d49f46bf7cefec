package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"local mobile 06", "0612345678", "+212612345678"},
		{"local mobile 07", "0712345678", "+212712345678"},
		{"already international", "+212698765432", "+212698765432"},
		{"double zero prefix", "0021261122334", "+21261122334"},
		{"spaces and punctuation", " 06 12-34.56.78 ", "+212612345678"},
		{"foreign number passes through", "15551234567", "15551234567"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeNumber(tc.in))
		})
	}
}

func TestNormalizeNumberIdempotent(t *testing.T) {
	inputs := []string{
		"0612345678",
		"+212698765432",
		"0021261122334",
		"15551234567",
		" 06 12-34.56.78 ",
	}
	for _, in := range inputs {
		once := NormalizeNumber(in)
		assert.Equal(t, once, NormalizeNumber(once), "input %q", in)
	}
}

func TestChatAddress(t *testing.T) {
	assert.Equal(t, "+212612345678@c.us", ChatAddress("0612345678"))
	assert.Equal(t, "+212698765432@c.us", ChatAddress("+212698765432"))
	assert.Equal(t, "+21261122334@c.us", ChatAddress("0021261122334"))

	// Applying twice never doubles the suffix.
	assert.Equal(t, "+212612345678@c.us", ChatAddress(ChatAddress("0612345678")))
}

func TestBareDigits(t *testing.T) {
	assert.Equal(t, "212612345678", BareDigits("+212612345678@c.us"))
	assert.Equal(t, "212612345678", BareDigits("+212612345678"))
	assert.Equal(t, "212612345678", BareDigits("212612345678"))
}

func TestNumberRegion(t *testing.T) {
	assert.Equal(t, "MA", NumberRegion("0612345678"))
	assert.Equal(t, "MA", NumberRegion("+212612345678@c.us"))
	assert.Equal(t, "", NumberRegion("not a number"))
}
