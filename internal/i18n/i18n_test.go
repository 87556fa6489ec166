package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang.org/x/text/language"
)

func TestResolve_UserPreferenceWins(t *testing.T) {
	tag := Resolve("ja", "kk, en;q=0.8")
	assert.Equal(t, language.Japanese, tag)
}

func TestResolve_AcceptLanguageFallback(t *testing.T) {
	tag := Resolve("", "kk-KZ, ru;q=0.9, en;q=0.8")
	assert.Equal(t, "kk", tag.String())
}

func TestResolve_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, language.English, Resolve("xx", ""))
	assert.Equal(t, language.English, Resolve("", "zz-ZZ"))
	assert.Equal(t, language.English, Resolve("", ""))
}

func TestT_TranslatesKnownStrings(t *testing.T) {
	assert.Equal(t, "初集中", T(language.Japanese, "First Focus"))
	assert.Equal(t, "Алғашқы фокус", T(language.Make("kk"), "First Focus"))
	assert.Equal(t, "First Focus", T(language.English, "First Focus"))
}

func TestT_FallsBackToSourceString(t *testing.T) {
	assert.Equal(t, "Untranslated", T(language.Japanese, "Untranslated"))
}
