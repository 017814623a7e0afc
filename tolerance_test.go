package htmlsnap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTolerances_Matches(t *testing.T) {
	t.Run("literals", func(t *testing.T) {
		tol := newTolerances([]string{"23", "89", ""}, nil, nil)
		assert.True(t, tol.Matches("23"))
		assert.True(t, tol.Matches("89"))
		assert.False(t, tol.Matches(""))
		assert.False(t, tol.Matches("foo"))
		assert.False(t, tol.Matches("x23"))
		assert.Equal(t, []string{"23", "89"}, tol.Values())
	})
	t.Run("prefixes", func(t *testing.T) {
		tol := newTolerances([]string{"23"}, []string{"prefix-", "another_prefix-"}, nil)
		assert.True(t, tol.Matches("prefix-23"))
		assert.True(t, tol.Matches("another_prefix-23"))
		assert.False(t, tol.Matches("23-postfix"))
		assert.False(t, tol.Matches("prefix-23-postfix"))
		assert.False(t, tol.Matches("prefix-"))
	})
	t.Run("postfixes", func(t *testing.T) {
		tol := newTolerances([]string{"23"}, nil, []string{"-postfix", "-another_postfix"})
		assert.True(t, tol.Matches("23-postfix"))
		assert.True(t, tol.Matches("23-another_postfix"))
		assert.False(t, tol.Matches("prefix-23"))
		assert.False(t, tol.Matches("prefix-23-postfix"))
	})
	t.Run("both", func(t *testing.T) {
		tol := newTolerances([]string{"23"}, []string{"prefix-"}, []string{"-postfix"})
		assert.True(t, tol.Matches("prefix-23"))
		assert.True(t, tol.Matches("23-postfix"))
		assert.True(t, tol.Matches("prefix-23-postfix"))
		assert.False(t, tol.Matches("prefix-24-postfix"))
	})
	t.Run("no values", func(t *testing.T) {
		tol := newTolerances(nil, []string{"prefix-"}, []string{"-postfix"})
		assert.True(t, tol.Empty())
		assert.False(t, tol.Matches("prefix--postfix"))
		var none *Tolerances
		assert.False(t, none.Matches("23"))
	})
}
