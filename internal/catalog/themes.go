package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTheme collects words that match no keyword.
const DefaultTheme = "Общее"

type themeKeywords struct {
	name     string
	keywords []string
}

// Checked in order; the first theme with a keyword contained in the word wins.
var themeTable = []themeKeywords{
	{"животные", []string{"медведь", "белка", "лось", "заяц", "волк", "кот", "олень"}},
	{"природа", []string{"солнце", "река", "лес", "дерево", "вода", "землянка", "бор", "море", "дыра"}},
	{"действия", []string{"идти", "бежать", "говорить", "видеть", "слышать", "жить", "сказать", "выйди", "копать", "смотреть", "убить", "танцевать", "жили", "размышлять", "драться", "хвастать", "жили вдвоём"}},
	{"семья", []string{"мать", "отец", "сын", "дочь", "брат", "сестра", "мужчина", "женщина"}},
	{"еда", []string{"хлеб", "мясо", "рыба", "ягода", "вода"}},
	{"жильё", []string{"дом", "землянка"}},
	{"характеристики", []string{"тяжело", "большой", "сильный", "маленький", "холодный", "милый", "друг"}},
	{"местоимения", []string{"я", "мой", "ты", "твой", "мы", "наш", "себе", "ему", "этот"}},
	{"речь", []string{"что", "как", "зачем", "нет", "не", "пусть", "дальше"}},
	{"тело", []string{"нос", "ухо", "рот"}},
	{"числа", []string{"семь", "шесть"}},
}

// DetectTheme classifies a Russian word or phrase by keyword containment.
func DetectTheme(word string) string {
	// Casers carry state and are not shared between goroutines.
	normalized := cases.Lower(language.Russian).String(strings.TrimSpace(word))
	if normalized == "" {
		return DefaultTheme
	}
	for _, theme := range themeTable {
		for _, keyword := range theme.keywords {
			if strings.Contains(normalized, keyword) {
				return cases.Title(language.Russian).String(theme.name)
			}
		}
	}
	return DefaultTheme
}
