package domain

import "fmt"

type Language string

const (
	LanguageEN Language = "en"
	LanguageHE Language = "he"
	LanguageRU Language = "ru"
	LanguageFR Language = "fr"
)

var Languages = []Language{LanguageEN, LanguageHE, LanguageRU, LanguageFR}

func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("不支持的语言: %q", s)
}

// LocalizedText 每种语言对应一个固定字段
type LocalizedText struct {
	EN string `json:"en"`
	HE string `json:"he"`
	RU string `json:"ru"`
	FR string `json:"fr"`
}

func (t LocalizedText) Get(lang Language) string {
	switch lang {
	case LanguageEN:
		return t.EN
	case LanguageHE:
		return t.HE
	case LanguageRU:
		return t.RU
	case LanguageFR:
		return t.FR
	}
	return ""
}

func (t *LocalizedText) Set(lang Language, v string) {
	switch lang {
	case LanguageEN:
		t.EN = v
	case LanguageHE:
		t.HE = v
	case LanguageRU:
		t.RU = v
	case LanguageFR:
		t.FR = v
	}
}
