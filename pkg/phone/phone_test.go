package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLocalNumber(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "969203446", "+51969203446"},
		{"spaced", "969 203 446", "+51969203446"},
		{"dashed", "969-203-446", "+51969203446"},
		{"already prefixed", "+51969203446", "+51969203446"},
		{"prefixed without plus", "51969203446", "+51969203446"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.in, "51")
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeRejectsWrongDigitCounts(t *testing.T) {
	for _, in := range []string{"", "12345678", "1234567890", "+519692034461", "abc"} {
		_, err := Normalize(in, "51")
		require.ErrorIs(t, err, ErrInvalidNumber, "input %q", in)
	}
}

func TestNormalizeRequiresCountryCode(t *testing.T) {
	_, err := Normalize("969203446", "")
	require.Error(t, err)
}

func TestDigits(t *testing.T) {
	require.Equal(t, "51969203446", Digits("+51 (969) 203-446"))
	require.Equal(t, "", Digits("no digits"))
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+51969203446", "Hola Ana, tu pase: https://example.com/i/abc")
	require.Equal(t, "https://wa.me/51969203446?text=Hola+Ana%2C+tu+pase%3A+https%3A%2F%2Fexample.com%2Fi%2Fabc", link)

	require.Equal(t, "https://wa.me/51969203446", WhatsAppLink("+51969203446", ""))
}
