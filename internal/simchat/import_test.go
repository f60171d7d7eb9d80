package simchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	csv := `time,name,message,type
0,Alex,hi everyone,
1:30,Sam,"loving this, thanks!",REACTION
bad-time,Riley,dropped row
90,Dana,any replay?,question
only-two,fields`

	drafts, skipped := ParseCSV(csv)
	require.Len(t, drafts, 3)
	assert.Equal(t, 2, skipped)

	assert.Equal(t, 0, drafts[0].AppearAtSeconds)
	assert.Equal(t, "Alex", drafts[0].SenderName)
	assert.Equal(t, TypeComment, drafts[0].Type)

	assert.Equal(t, 90, drafts[1].AppearAtSeconds)
	assert.Equal(t, "loving this, thanks!", drafts[1].Content)
	assert.Equal(t, TypeReaction, drafts[1].Type)

	assert.Equal(t, TypeQuestion, drafts[2].Type)

	// Positions preserve source order.
	assert.Equal(t, 0, drafts[0].Position)
	assert.Equal(t, 1, drafts[1].Position)
	assert.Equal(t, 3, drafts[2].Position)
}

func TestParseCSVNoHeader(t *testing.T) {
	drafts, skipped := ParseCSV("5,Alex,hello\n10,Sam,hey")
	require.Len(t, drafts, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, 5, drafts[0].AppearAtSeconds)
}

func TestParseCSVEmpty(t *testing.T) {
	drafts, skipped := ParseCSV("")
	assert.Empty(t, drafts)
	assert.Zero(t, skipped)
}

func TestParseTimeString(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"90", 90, true},
		{" 42 ", 42, true},
		{"1:30", 90, true},
		{"1:02:30", 3750, true},
		{"0:00", 0, true},
		{"1:2:3:4", 0, false},
		{"abc", 0, false},
		{"1:xx", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseTimeString(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestParseMessageType(t *testing.T) {
	assert.Equal(t, TypeQuestion, ParseMessageType("question"))
	assert.Equal(t, TypeReaction, ParseMessageType(" REACTION "))
	assert.Equal(t, TypeTestimonial, ParseMessageType("Testimonial"))
	assert.Equal(t, TypeComment, ParseMessageType(""))
	assert.Equal(t, TypeComment, ParseMessageType("whatever"))
}

func TestSplitCSVLineQuoting(t *testing.T) {
	assert.Equal(t, []string{"a", "b,c", "d"}, splitCSVLine(`a,"b,c",d`))
	assert.Equal(t, []string{`say "hi"`, "x"}, splitCSVLine(`"say ""hi""",x`))
	assert.Equal(t, []string{"plain"}, splitCSVLine("plain"))
}
