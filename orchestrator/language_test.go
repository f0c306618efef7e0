package orchestrator

import "testing"

func TestDetectLanguageEnglishLatinOnly(t *testing.T) {
	if got := detectLanguage("find a 2 bedroom apartment"); got != "en" {
		t.Errorf("expected en, got %s", got)
	}
}

func TestDetectLanguageVietnameseDiacritics(t *testing.T) {
	if got := detectLanguage("Tìm căn hộ 2 phòng ngủ"); got != "vi" {
		t.Errorf("expected vi, got %s", got)
	}
}

func TestDetectLanguageThreeScriptsTriggersSimplification(t *testing.T) {
	mixed := "apartment 公寓 квартира"
	if got := detectLanguage(mixed); got != "vi" {
		t.Errorf("expected vi (restricted) for 3+ scripts, got %s", got)
	}
}

func TestDetectLanguageTwoScriptsPreserved(t *testing.T) {
	if got := detectLanguage("apartment gần metro"); got != "vi" {
		t.Errorf("expected vi for Latin+Vietnamese mix, got %s", got)
	}
}
