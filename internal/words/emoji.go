package words

import "strings"

// emojiRanges covers the pictographic blocks that show up in social-media
// text. Joiners, variation selectors and skin-tone modifiers count as part
// of an emoji so that multi-rune sequences stay in one token.
var emojiRanges = [][2]rune{
	{0x1F000, 0x1F0FF}, // mahjong, dominoes, cards
	{0x1F170, 0x1F251}, // enclosed alphanumerics and ideographs
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F700, 0x1F77F}, // alchemical symbols
	{0x1F900, 0x1F9FF}, // supplemental symbols and pictographs
	{0x1FA70, 0x1FAFF}, // symbols and pictographs extended-A
	{0x2600, 0x26FF},   // miscellaneous symbols
	{0x2700, 0x27BF},   // dingbats
	{0x2B00, 0x2BFF},   // arrows and stars
	{0x1F1E6, 0x1F1FF}, // regional indicators
	{0x1F3FB, 0x1F3FF}, // skin-tone modifiers
	{0xFE0F, 0xFE0F},   // variation selector-16
	{0x200D, 0x200D},   // zero-width joiner
}

func isEmojiRune(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// spaceOutEmoji surrounds each run of emoji runes with whitespace, so emoji
// split off from adjacent words and from each other's sequences cleanly.
func spaceOutEmoji(s string) string {
	var b strings.Builder
	inEmoji := false
	for _, r := range s {
		emoji := isEmojiRune(r)
		if emoji && !inEmoji {
			b.WriteByte(' ')
		} else if !emoji && inEmoji {
			b.WriteByte(' ')
		}
		inEmoji = emoji
		b.WriteRune(r)
	}
	if inEmoji {
		b.WriteByte(' ')
	}
	return b.String()
}

// removeEmoji replaces each run of emoji runes with a space.
func removeEmoji(s string) string {
	var b strings.Builder
	inEmoji := false
	for _, r := range s {
		if isEmojiRune(r) {
			if !inEmoji {
				b.WriteByte(' ')
			}
			inEmoji = true
			continue
		}
		inEmoji = false
		b.WriteRune(r)
	}
	return b.String()
}
