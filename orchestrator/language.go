package orchestrator

import "unicode"

// detectLanguage applies spec §4.5 stage 2's script co-occurrence rule: if
// the query mixes more than two distinct Unicode scripts, restrict to
// Vietnamese+Latin (the platform's two supported scripts) rather than
// guessing a third. Otherwise report "vi" when any Vietnamese-only
// diacritic appears and "en" for everything else.
func detectLanguage(query string) string {
	scripts := make(map[string]bool)
	hasVietnameseMark := false
	for _, r := range query {
		switch {
		case unicode.Is(unicode.Han, r):
			scripts["han"] = true
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			scripts["japanese"] = true
		case unicode.Is(unicode.Hangul, r):
			scripts["hangul"] = true
		case unicode.Is(unicode.Latin, r):
			scripts["latin"] = true
			if isVietnameseDiacritic(r) {
				hasVietnameseMark = true
			}
		case unicode.IsLetter(r):
			for name, table := range unicode.Scripts {
				if unicode.Is(table, r) {
					scripts[name] = true
					break
				}
			}
		}
	}

	if len(scripts) > 2 {
		return "vi"
	}
	if hasVietnameseMark {
		return "vi"
	}
	if scripts["latin"] || len(scripts) == 0 {
		return "en"
	}
	// Non-Latin scripts with no Vietnamese marks also report "en": the
	// platform only serves en/vi, and downstream handlers use English
	// prompts for anything that is not "vi".
	return "en"
}

// isVietnameseDiacritic reports whether r is one of the Latin-extended
// code points that only appear in Vietnamese orthography.
func isVietnameseDiacritic(r rune) bool {
	switch {
	case r >= 0x1EA0 && r <= 0x1EF9:
		return true
	case r == 'đ' || r == 'Đ':
		return true
	case r >= 0x00C0 && r <= 0x1EF9 && unicode.Is(unicode.Mn, r):
		return true
	}
	return false
}
