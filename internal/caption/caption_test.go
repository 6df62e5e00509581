package caption

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mantyhq/manty/internal/analysis"
	"github.com/mantyhq/manty/internal/fault"
	"github.com/mantyhq/manty/internal/platform"
)

func sampleAnalysis() *analysis.MediaAnalysis {
	return &analysis.MediaAnalysis{
		MediaID:         "media-1",
		Mood:            "energetic",
		MoodConfidence:  0.9,
		SceneType:       "urban",
		SceneConfidence: 0.8,
		ColorPalette:    []string{"#FF6B35"},
		Objects:         []string{"skateboard"},
	}
}

func TestGeminiGeneratorWithoutClient(t *testing.T) {
	g := NewGeminiGenerator(nil, "")
	if _, err := g.Candidates(context.Background(), "write a caption", 3); err == nil {
		t.Fatal("Candidates with unconfigured client returned nil error")
	}
}

func TestExtractHashtags(t *testing.T) {
	got := ExtractHashtags("City lights tonight #urban #night_life #photo2024")
	want := []string{"#urban", "#night_life", "#photo2024"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hashtag %d = %q, want %q", i, got[i], want[i])
		}
	}
	if got := ExtractHashtags("no tags here"); got != nil {
		t.Errorf("got %v for tagless text", got)
	}
}

func TestDropExcessHashtags(t *testing.T) {
	text := "Great day #one #two #three #four"
	got := dropExcessHashtags(text, 2)
	if got != "Great day #one #two" {
		t.Errorf("got %q", got)
	}
	if dropExcessHashtags(text, 10) != text {
		t.Error("under-limit text was modified")
	}

	// Prose after a dropped hashtag survives; only the tag is removed.
	got = dropExcessHashtags("Sunset ride #vibes home before dark #moody see you tomorrow", 1)
	if got != "Sunset ride #vibes home before dark see you tomorrow" {
		t.Errorf("mid-text hashtag drop: got %q", got)
	}
	got = dropExcessHashtags("Coffee first #morning then the world #hustle", 0)
	if got != "Coffee first then the world" {
		t.Errorf("drop-all: got %q", got)
	}
}

func TestTruncateAtWord(t *testing.T) {
	got, ok := truncateAtWord("the quick brown fox jumps", 14)
	if !ok || got != "the quick" {
		t.Errorf("got %q, ok=%v", got, ok)
	}

	// A single token longer than the limit cannot be cut cleanly.
	if _, ok := truncateAtWord("supercalifragilistic", 10); ok {
		t.Error("unbreakable token was truncated mid-word")
	}

	got, ok = truncateAtWord("short", 10)
	if !ok || got != "short" {
		t.Errorf("under-limit text changed: %q", got)
	}
}

func TestConformLongCaption(t *testing.T) {
	spec, err := platform.Lookup(platform.TikTok)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	// 450-char raw candidate must come back word-truncated to <= 300.
	raw := strings.Repeat("riding through the city at golden hour ", 12)
	if utf8.RuneCountInString(raw) < 450 {
		t.Fatalf("test fixture too short: %d", utf8.RuneCountInString(raw))
	}
	got, ok := conform(raw, spec)
	if !ok {
		t.Fatal("conform discarded a truncatable caption")
	}
	if n := utf8.RuneCountInString(got); n > spec.MaxCaptionLength {
		t.Errorf("conformed caption is %d runes, limit %d", n, spec.MaxCaptionLength)
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("trailing whitespace survived: %q", got)
	}
	// Word boundary: the result must end on a word from the source.
	lastWord := got[strings.LastIndex(got, " ")+1:]
	if !strings.Contains(raw, lastWord+" ") && !strings.HasSuffix(raw, lastWord) {
		t.Errorf("caption ends mid-word: %q", lastWord)
	}
}

func TestConformHashtagOverflow(t *testing.T) {
	spec, err := platform.Lookup(platform.Instagram)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("Sunset vibes")
	for i := 0; i < 40; i++ {
		sb.WriteString(" #tag")
		sb.WriteByte(byte('a' + i%26))
	}
	got, ok := conform(sb.String(), spec)
	if !ok {
		t.Fatal("conform discarded a trimmable caption")
	}
	tags := ExtractHashtags(got)
	if len(tags) > spec.MaxHashtags {
		t.Errorf("got %d hashtags, limit %d", len(tags), spec.MaxHashtags)
	}
	if !strings.HasPrefix(got, "Sunset vibes") {
		t.Errorf("non-hashtag text was damaged: %q", got)
	}
	// Excess is dropped from the end: the first hashtags survive.
	if tags[0] != "#taga" {
		t.Errorf("leading hashtag dropped: %v", tags[:3])
	}
}

// scriptedGenerator returns canned candidate batches in order.
type scriptedGenerator struct {
	batches [][]string
	calls   int
	err     error
}

func (s *scriptedGenerator) Candidates(ctx context.Context, prompt string, n int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.batches) {
		return nil, nil
	}
	batch := s.batches[s.calls]
	s.calls++
	return batch, nil
}

func TestGenerateCompliantCaptions(t *testing.T) {
	gen := NewGenerator(&scriptedGenerator{batches: [][]string{
		{"City energy all day #urban #street", "Chasing concrete waves #skate", "Golden hour grind #sunset"},
	}})

	result, err := gen.Generate(context.Background(), sampleAnalysis(), platform.Instagram, ToneCasual, nil, 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Captions) != 3 || result.Shortfall != 0 {
		t.Fatalf("got %d captions, shortfall %d", len(result.Captions), result.Shortfall)
	}
	for _, c := range result.Captions {
		if c.ID == "" || c.MediaID != "media-1" || c.Platform != platform.Instagram || c.Tone != ToneCasual {
			t.Errorf("caption fields not stamped: %+v", c)
		}
		if c.CharacterCount != utf8.RuneCountInString(c.Text) {
			t.Errorf("CharacterCount %d does not match text %q", c.CharacterCount, c.Text)
		}
	}
}

func TestGenerateUnsupportedPlatform(t *testing.T) {
	gen := NewGenerator(&scriptedGenerator{})

	var unsupported *fault.UnsupportedPlatformError
	_, err := gen.Generate(context.Background(), sampleAnalysis(), platform.ID("myspace"), ToneCasual, nil, 3)
	if !errors.As(err, &unsupported) {
		t.Fatalf("got %v, want UnsupportedPlatformError", err)
	}
}

func TestGenerateShortfall(t *testing.T) {
	// Only two compliant candidates exist across all three attempts; the
	// rest are single unbreakable tokens that can never conform to the
	// TikTok limit.
	junk := strings.Repeat("x", 400)
	gen := NewGenerator(&scriptedGenerator{batches: [][]string{
		{"Good one #a", junk, junk, junk, junk},
		{"Another good one #b", junk, junk},
		{junk, junk, junk},
	}})

	result, err := gen.Generate(context.Background(), sampleAnalysis(), platform.TikTok, TonePlayful, nil, 5)

	var constraint *fault.ConstraintError
	if !errors.As(err, &constraint) {
		t.Fatalf("got %v, want ConstraintError", err)
	}
	if constraint.Shortfall() != 3 {
		t.Errorf("Shortfall() = %d, want 3", constraint.Shortfall())
	}
	if len(result.Captions) != 2 {
		t.Fatalf("got %d captions, want the 2 compliant ones", len(result.Captions))
	}
	if result.Shortfall != 3 {
		t.Errorf("result.Shortfall = %d, want 3", result.Shortfall)
	}
}

func TestGenerateRetriesUntilSatisfied(t *testing.T) {
	junk := strings.Repeat("y", 400)
	script := &scriptedGenerator{batches: [][]string{
		{junk, "First keeper #one"},
		{"Second keeper #two"},
	}}
	gen := NewGenerator(script)

	result, err := gen.Generate(context.Background(), sampleAnalysis(), platform.TikTok, ToneCasual, nil, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Captions) != 2 {
		t.Fatalf("got %d captions, want 2", len(result.Captions))
	}
	if script.calls != 2 {
		t.Errorf("generator called %d times, want 2", script.calls)
	}
}

func TestGenerateDropsDuplicates(t *testing.T) {
	gen := NewGenerator(&scriptedGenerator{batches: [][]string{
		{"Same caption #x", "same caption #x"},
		{"Different caption #y"},
	}})

	result, err := gen.Generate(context.Background(), sampleAnalysis(), platform.Instagram, ToneCasual, nil, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Captions) != 2 {
		t.Fatalf("got %d captions, want 2", len(result.Captions))
	}
	if strings.EqualFold(result.Captions[0].Text, result.Captions[1].Text) {
		t.Error("duplicate caption accepted")
	}
}

func TestGenerateRejectsUnknownTone(t *testing.T) {
	gen := NewGenerator(&scriptedGenerator{})
	if _, err := gen.Generate(context.Background(), sampleAnalysis(), platform.Instagram, Tone("sarcastic"), nil, 3); err == nil {
		t.Fatal("unknown tone accepted")
	}
}
