// Package postprocess turns raw SenseVoice output into display text.
//
// The recogniser interleaves its transcript with special tokens such as
// <|zh|><|HAPPY|><|Speech|><|withitn|>. Language and ITN markers are removed,
// audio events become a leading emoji and the dominant emotion becomes a
// trailing emoji.
package postprocess

import (
	"strings"
)

type token struct {
	tag   string
	emoji string
}

const (
	noSpeechUnknown = "<|nospeech|><|Event_UNK|>"
	unknownEmoji    = "❓"
	langMarker      = "<|lang|>"
	neutralTag      = "<|NEUTRAL|>"
)

var languageTags = []string{"<|zh|>", "<|en|>", "<|yue|>", "<|ja|>", "<|ko|>", "<|nospeech|>"}

var emotions = []token{
	{"<|HAPPY|>", "😊"},
	{"<|SAD|>", "😔"},
	{"<|ANGRY|>", "😡"},
	{neutralTag, ""},
	{"<|FEARFUL|>", "😰"},
	{"<|DISGUSTED|>", "🤢"},
	{"<|SURPRISED|>", "😮"},
}

var events = []token{
	{"<|BGM|>", "🎼"},
	{"<|Speech|>", ""},
	{"<|Applause|>", "👏"},
	{"<|Laughter|>", "😀"},
	{"<|Cry|>", "😭"},
	{"<|Sneeze|>", "🤧"},
	{"<|Breath|>", ""},
	{"<|Cough|>", "😷"},
}

// Tags dropped without a visible replacement.
var silentTags = []string{
	"<|EMO_UNKNOWN|>",
	"<|Sing|>",
	"<|Speech_Noise|>",
	"<|withitn|>",
	"<|woitn|>",
	"<|GBG|>",
	"<|Event_UNK|>",
}

var (
	emotionEmoji = emojiSet(emotions)
	eventEmoji   = emojiSet(events)
	allEmoji     = append(append([]string{}, emojiList(events)...), emojiList(emotions)...)
)

func emojiSet(tokens []token) map[rune]bool {
	set := make(map[rune]bool)
	for _, t := range tokens {
		if t.emoji != "" {
			set[[]rune(t.emoji)[0]] = true
		}
	}
	return set
}

func emojiList(tokens []token) []string {
	var out []string
	for _, t := range tokens {
		if t.emoji != "" {
			out = append(out, t.emoji)
		}
	}
	return out
}

// Rich converts raw recogniser output into display text. Text without any
// special tokens is only trimmed.
func Rich(raw string) string {
	s := strings.ReplaceAll(raw, noSpeechUnknown, unknownEmoji)
	for _, lang := range languageTags {
		s = strings.ReplaceAll(s, lang, langMarker)
	}

	parts := strings.Split(s, langMarker)
	segments := make([]string, len(parts))
	for i, p := range parts {
		segments[i] = strings.Trim(formatSegment(p), " ")
	}

	out := []rune(" " + segments[0])
	curEvent, hasEvent := leadingEvent(out)
	for _, seg := range segments[1:] {
		if seg == "" {
			continue
		}
		r := []rune(seg)
		if ev, ok := leadingEvent(r); ok && hasEvent && ev == curEvent {
			r = r[1:]
		}
		curEvent, hasEvent = leadingEvent(r)

		if emo, ok := trailingEmotion(r); ok {
			if prev, ok := trailingEmotion(out); ok && prev == emo {
				out = out[:len(out)-1]
			}
		}
		out = append(out, []rune(strings.TrimSpace(string(r)))...)
	}

	return strings.TrimSpace(string(out))
}

// formatSegment rewrites the tags of a single-language segment.
func formatSegment(s string) string {
	counts := make(map[string]int, len(emotions)+len(events))
	remove := func(tag string) {
		counts[tag] = strings.Count(s, tag)
		s = strings.ReplaceAll(s, tag, "")
	}
	for _, t := range events {
		remove(t.tag)
	}
	for _, t := range emotions {
		remove(t.tag)
	}
	for _, tag := range silentTags {
		remove(tag)
	}

	dominant := emotions[3]
	for _, e := range emotions {
		if counts[e.tag] > counts[dominant.tag] {
			dominant = e
		}
	}

	for _, e := range events {
		if counts[e.tag] > 0 {
			s = e.emoji + s
		}
	}
	s += dominant.emoji

	for _, emoji := range allEmoji {
		s = strings.ReplaceAll(s, " "+emoji, emoji)
		s = strings.ReplaceAll(s, emoji+" ", emoji)
	}
	return strings.TrimSpace(s)
}

func leadingEvent(r []rune) (rune, bool) {
	if len(r) == 0 || !eventEmoji[r[0]] {
		return 0, false
	}
	return r[0], true
}

func trailingEmotion(r []rune) (rune, bool) {
	if len(r) == 0 || !emotionEmoji[r[len(r)-1]] {
		return 0, false
	}
	return r[len(r)-1], true
}
