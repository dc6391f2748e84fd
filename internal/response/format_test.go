package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Parsed{
		{Scenario: "A", Consequences: []string{"X", "Y"}, Analysis: "B"},
		{Scenario: "Dinosaurs never went extinct.", Consequences: []string{"Cities are built differently.", "No oil economy", "- literal dash"}, Analysis: "Evolution is path dependent.\nSecond line."},
		{Scenario: "Multi\nline scenario", Consequences: []string{"one"}, Analysis: "done"},
	}
	for _, want := range cases {
		got := Parse(Format(want))
		require.Equal(t, want, got)
		require.Equal(t, got, Parse(Format(got)))
	}
}

func TestFormatOmitsEmptySections(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Analysis: only", Format(Parsed{Analysis: "only"}))
	assert.Equal(t, "", Format(Parsed{}))
}

func TestLayoutPolicies(t *testing.T) {
	t.Parallel()

	partial := Parsed{Scenario: "A", Consequences: []string{}}

	omit := Layout(partial, "raw", PolicyOmitEmpty)
	require.Len(t, omit, 1)
	assert.Equal(t, TitleScenario, omit[0].Title)

	all := Layout(partial, "raw", PolicyRenderAll)
	require.Len(t, all, 3)
	assert.Equal(t, []string{TitleScenario, TitleConsequences, TitleAnalysis}, []string{all[0].Title, all[1].Title, all[2].Title})
	assert.Empty(t, all[2].Body)

	raw := Layout(partial, "raw", PolicyRawFallback)
	require.Len(t, raw, 1)
	assert.Equal(t, "A", raw[0].Body)
}

func TestLayoutRawFallback(t *testing.T) {
	t.Parallel()

	text := "  The model ignored the format.  "
	sections := Layout(Parse(text), text, PolicyRawFallback)
	require.Len(t, sections, 1)
	assert.Equal(t, "", sections[0].Title)
	assert.Equal(t, "The model ignored the format.", sections[0].Body)

	assert.Nil(t, Layout(Parse(""), "  ", PolicyRawFallback))
	assert.Empty(t, Layout(Parse(""), "ignored", PolicyOmitEmpty))
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, p := range []Policy{PolicyOmitEmpty, PolicyRenderAll, PolicyRawFallback} {
		got, ok := ParsePolicy(p.String())
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
	_, ok := ParsePolicy("sideways")
	assert.False(t, ok)
}
