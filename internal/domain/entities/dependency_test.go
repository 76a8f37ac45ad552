package entities_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pyci/internal/domain/entities"
	"github.com/rios0rios0/pyci/internal/pep440"
)

func TestParseDependency(t *testing.T) {
	t.Parallel()

	ignoreOffsets := cmpopts.IgnoreFields(entities.VersionClause{}, "Start", "End")

	tests := []struct {
		name     string
		line     string
		expected entities.DependencySpecifier
	}{
		{
			name: "should parse a name with lower and upper bounds",
			line: "numpy>=1.20,<2.0",
			expected: entities.DependencySpecifier{
				Name: "numpy", NormalizedName: "numpy",
				Clauses: []entities.VersionClause{
					{Operator: pep440.OpGreaterEqual, Version: "1.20"},
					{Operator: pep440.OpLess, Version: "2.0"},
				},
			},
		},
		{
			name: "should parse extras, spaces and a marker",
			line: `uvicorn[standard, http2] >= 0.20 , < 1 ; python_version < "3.12"`,
			expected: entities.DependencySpecifier{
				Name: "uvicorn", NormalizedName: "uvicorn", Extras: []string{"standard", "http2"},
				Clauses: []entities.VersionClause{
					{Operator: pep440.OpGreaterEqual, Version: "0.20"},
					{Operator: pep440.OpLess, Version: "1"},
				},
				Marker: `python_version < "3.12"`,
			},
		},
		{
			name: "should parse parenthesised clauses and wildcards",
			line: "Django_Extensions (==3.*)",
			expected: entities.DependencySpecifier{
				Name: "Django_Extensions", NormalizedName: "django-extensions", Unnormalized: true,
				Clauses: []entities.VersionClause{
					{Operator: pep440.OpEqual, Version: "3", Wildcard: true},
				},
			},
		},
		{
			name: "should parse a URL requirement",
			line: "pkg @ https://example.com/pkg-1.0.tar.gz",
			expected: entities.DependencySpecifier{
				Name: "pkg", NormalizedName: "pkg", URL: "https://example.com/pkg-1.0.tar.gz",
			},
		},
		{
			name: "should parse a bare name",
			line: "click",
			expected: entities.DependencySpecifier{
				Name: "click", NormalizedName: "click",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			expected := tt.expected
			expected.RawLine = tt.line

			// when
			dep, err := entities.ParseDependency(tt.line)

			// then
			require.NoError(t, err)
			if diff := cmp.Diff(&expected, dep, ignoreOffsets); diff != "" {
				t.Errorf("ParseDependency(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestParseDependency_Errors(t *testing.T) {
	t.Parallel()

	lines := map[string]string{
		"should reject free text":                   "not a valid spec!!",
		"should reject an unknown operator":         "numpy=>1.0",
		"should reject an unclosed extra":           "uvicorn[standard>=1.0",
		"should reject an invalid marker":           `numpy>=1.0 ; python_version >>> "3"`,
		"should reject a compatible single segment": "numpy~=1",
		"should reject an empty line":               "   ",
	}

	for name, line := range lines {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// given
			raw := line

			// when
			_, err := entities.ParseDependency(raw)

			// then
			require.Error(t, err)
			assert.ErrorIs(t, err, entities.ErrParse)
			var parseErr *entities.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, raw, parseErr.Line)
		})
	}
}

func TestDependencySpecifier_WithVersion(t *testing.T) {
	t.Parallel()

	t.Run("should replace only the version token and keep the spacing", func(t *testing.T) {
		t.Parallel()

		// given
		dep, err := entities.ParseDependency(`pydantic[email] ~= 1.10 , != 1.10.3 ; os_name == "posix"`)
		require.NoError(t, err)

		// when
		line := dep.WithVersion(0, "2.6")

		// then
		assert.Equal(t, `pydantic[email] ~= 2.6 , != 1.10.3 ; os_name == "posix"`, line)
	})

	t.Run("should round trip an untouched line", func(t *testing.T) {
		t.Parallel()

		// given
		line := "requests (>=2.28 ,<3)"

		// when
		dep, err := entities.ParseDependency(line)

		// then
		require.NoError(t, err)
		assert.Equal(t, line, dep.WithVersion(0, "2.28"))
		assert.Equal(t, "requests", dep.FullName())
		assert.Equal(t, ">=2.28,<3", dep.SpecifierSet().String())
	})
}
