package pep440_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/pep440"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		canonical string
	}{
		{name: "should parse a plain release", raw: "1.2.3", canonical: "1.2.3"},
		{name: "should strip a leading v", raw: "v1.0", canonical: "1.0"},
		{name: "should keep the epoch", raw: "2!1.0", canonical: "2!1.0"},
		{name: "should normalise alpha spelling", raw: "1.0alpha1", canonical: "1.0a1"},
		{name: "should normalise preview spelling", raw: "1.0-preview.2", canonical: "1.0rc2"},
		{name: "should normalise c to rc", raw: "1.0c3", canonical: "1.0rc3"},
		{name: "should default a missing pre-release number to zero", raw: "1.0b", canonical: "1.0b0"},
		{name: "should normalise implicit post release", raw: "1.0-1", canonical: "1.0.post1"},
		{name: "should normalise rev spelling", raw: "1.0.rev4", canonical: "1.0.post4"},
		{name: "should parse a dev release", raw: "1.0.dev3", canonical: "1.0.dev3"},
		{name: "should parse a full version", raw: "1!2.3.4rc5.post6.dev7+ubuntu-1", canonical: "1!2.3.4rc5.post6.dev7+ubuntu.1"},
		{name: "should be case insensitive", raw: "1.0RC1", canonical: "1.0rc1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			raw := tt.raw

			// when
			v, err := pep440.Parse(raw)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, v.String())
			assert.Equal(t, raw, v.Original())
		})
	}

	t.Run("should reject a non-version string", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "not-a-version"

		// when
		_, err := pep440.Parse(raw)

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, pep440.ErrInvalidVersion)
	})

	t.Run("should reject trailing garbage", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "1.0 foo"

		// when
		_, err := pep440.Parse(raw)

		// then
		assert.ErrorIs(t, err, pep440.ErrInvalidVersion)
	})
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	t.Run("should treat trailing zeros as equal", func(t *testing.T) {
		t.Parallel()

		// given
		a := pep440.MustParse("1.0")
		b := pep440.MustParse("1.0.0")

		// when
		equal := a.Equal(b)

		// then
		assert.True(t, equal)
	})

	t.Run("should sort every segment kind in the standard order", func(t *testing.T) {
		t.Parallel()

		// given
		ordered := []string{
			"1.0.dev0",
			"1.0a1.dev1",
			"1.0a1",
			"1.0a2",
			"1.0b1",
			"1.0rc1",
			"1.0",
			"1.0.post1.dev0",
			"1.0.post1",
			"1.1",
			"1!0.1",
		}
		shuffled := []pep440.Version{}
		for i := len(ordered) - 1; i >= 0; i-- {
			shuffled = append(shuffled, pep440.MustParse(ordered[i]))
		}

		// when
		sort.Slice(shuffled, func(i, j int) bool { return shuffled[i].LessThan(shuffled[j]) })

		// then
		got := make([]string, len(shuffled))
		for i, v := range shuffled {
			got[i] = v.Original()
		}
		assert.Equal(t, ordered, got)
	})
}

func TestVersionHelpers(t *testing.T) {
	t.Parallel()

	t.Run("should report pre-releases including dev releases", func(t *testing.T) {
		t.Parallel()

		// given
		versions := map[string]bool{"1.0a1": true, "1.0.dev1": true, "1.0": false, "1.0.post1": false}

		for raw, expected := range versions {
			// when
			result := pep440.MustParse(raw).IsPreRelease()

			// then
			assert.Equal(t, expected, result, raw)
		}
	})

	t.Run("should render a padded release prefix with epoch", func(t *testing.T) {
		t.Parallel()

		// given
		v := pep440.MustParse("3!1.2rc1")

		// when
		result := v.ReleaseString(3)

		// then
		assert.Equal(t, "3!1.2.0", result)
	})
}
