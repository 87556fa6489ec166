// Package i18n localizes user-facing strings of the dashboard API.
// English is the source language; Japanese and Kazakh translations are
// registered into the x/text message catalog at init time, keyed by the
// English source string so untranslated messages fall back gracefully.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported language tags, in matcher preference order.
// English must come first: it is the fallback for unknown languages.
var supported = []language.Tag{
	language.English,
	language.Japanese,
	language.Make("kk"),
}

var matcher = language.NewMatcher(supported)

// SupportedTags returns the supported language tags.
func SupportedTags() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// DefaultTag returns the fallback language.
func DefaultTag() language.Tag {
	return supported[0]
}

// Resolve picks the best supported language for the request.
// The stored user preference wins over the Accept-Language header.
func Resolve(userLanguage, acceptLanguage string) language.Tag {
	if userLanguage != "" {
		if tag, err := language.Parse(userLanguage); err == nil {
			_, index, _ := matcher.Match(tag)
			return supported[index]
		}
	}

	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			_, index, _ := matcher.Match(tags...)
			return supported[index]
		}
	}

	return DefaultTag()
}

// Printer returns a message printer for the tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// T translates a source string for the tag.
func T(tag language.Tag, msg string) string {
	return Printer(tag).Sprintf(msg)
}

func init() {
	ja := language.Japanese
	kk := language.Make("kk")

	set := func(tag language.Tag, key, value string) {
		if err := message.SetString(tag, key, value); err != nil {
			panic("i18n: " + err.Error())
		}
	}

	// Achievement names.
	set(ja, "First Focus", "初集中")
	set(ja, "Three in a Row", "3日連続")
	set(ja, "Full Week", "丸一週間")
	set(ja, "Productive Week", "生産的な一週間")
	set(ja, "Focus Machine", "集中マシン")
	set(ja, "Half Century", "ハーフセンチュリー")
	set(ja, "Centurion", "センチュリオン")
	set(ja, "Deep Diver", "ディープダイバー")

	set(kk, "First Focus", "Алғашқы фокус")
	set(kk, "Three in a Row", "Қатарынан үш күн")
	set(kk, "Full Week", "Толық апта")
	set(kk, "Productive Week", "Өнімді апта")
	set(kk, "Focus Machine", "Фокус машинасы")
	set(kk, "Half Century", "Жарты жүздік")
	set(kk, "Centurion", "Центурион")
	set(kk, "Deep Diver", "Терең сүңгуір")

	// Achievement descriptions.
	set(ja, "Complete your first focus session", "最初の集中セッションを完了する")
	set(ja, "Keep a 3-day streak", "3日間の連続記録を維持する")
	set(ja, "Keep a 7-day streak", "7日間の連続記録を維持する")
	set(ja, "Complete 10 sessions within 7 days", "7日以内に10セッションを完了する")
	set(ja, "Complete 25 sessions within 7 days", "7日以内に25セッションを完了する")
	set(ja, "Complete 50 sessions in total", "合計50セッションを完了する")
	set(ja, "Complete 100 sessions in total", "合計100セッションを完了する")
	set(ja, "Accumulate 10 hours of focus time", "合計10時間の集中時間を達成する")

	set(kk, "Complete your first focus session", "Алғашқы фокус сессиясын аяқтаңыз")
	set(kk, "Keep a 3-day streak", "3 күндік серияны сақтаңыз")
	set(kk, "Keep a 7-day streak", "7 күндік серияны сақтаңыз")
	set(kk, "Complete 10 sessions within 7 days", "7 күн ішінде 10 сессия аяқтаңыз")
	set(kk, "Complete 25 sessions within 7 days", "7 күн ішінде 25 сессия аяқтаңыз")
	set(kk, "Complete 50 sessions in total", "Барлығы 50 сессия аяқтаңыз")
	set(kk, "Complete 100 sessions in total", "Барлығы 100 сессия аяқтаңыз")
	set(kk, "Accumulate 10 hours of focus time", "Барлығы 10 сағат фокус уақытын жинаңыз")
}
