//go:build unittest

package cashaddr

import (
	"testing"

	"github.com/juju/errors"
)

func TestCharToValue(t *testing.T) {
	for i := 0; i < len(charset); i++ {
		c := rune(charset[i])
		v, err := CharToValue(c)
		if err != nil {
			t.Fatalf("CharToValue(%c) error %v", c, err)
		}
		if int(v) != i {
			t.Errorf("CharToValue(%c) = %d, want %d", c, v, i)
		}
		if c >= 'a' && c <= 'z' {
			u, err := CharToValue(c - 'a' + 'A')
			if err != nil || u != v {
				t.Errorf("CharToValue(%c) = %d, %v, want %d", c-'a'+'A', u, err, v)
			}
		}
		if got := ValueToChar(v); got != charset[i] {
			t.Errorf("ValueToChar(%d) = %c, want %c", v, got, charset[i])
		}
	}
}

func TestCharToValueInvalid(t *testing.T) {
	for _, c := range []rune{'1', 'b', 'i', 'o', 'B', 'I', 'O', ':', ' ', 0, 0x7f, 'é', '€', -1} {
		if _, err := CharToValue(c); errors.Cause(err) != ErrInvalidCharacter {
			t.Errorf("CharToValue(%q) error %v, want %v", c, err, ErrInvalidCharacter)
		}
	}
}
