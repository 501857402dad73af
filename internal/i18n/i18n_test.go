package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDefault_Translate(t *testing.T) {
	c := Default()

	en := c.For(language.English)
	assert.Equal(t, "Main Class", en.Translate("project.node.main_class"))

	zh := c.Match("zh-CN,zh;q=0.9,en;q=0.8")
	assert.Equal(t, "主函数的Class", zh.Translate("project.node.main_class"))

	// Unknown keys resolve to themselves.
	assert.Equal(t, "project.node.nope", en.Translate("project.node.nope"))
}

func TestCatalog_MatchFallsBack(t *testing.T) {
	c := Default()
	assert.Equal(t, "Deploy Mode", c.Match("").Translate("project.node.deploy_mode"))
	assert.Equal(t, "Deploy Mode", c.Match("fr-FR").Translate("project.node.deploy_mode"))
	assert.Equal(t, "Deploy Mode", c.Match(";;;").Translate("project.node.deploy_mode"))
}

func TestCatalog_Missing(t *testing.T) {
	c, err := NewCatalog([]language.Tag{language.English, language.German}, map[language.Tag]map[string]string{
		language.English: {"greeting": "Hello", "bye": "Bye"},
		language.German:  {"greeting": "Hallo"},
	})
	require.NoError(t, err)

	de := c.For(language.German)
	assert.Equal(t, "Hallo", de.Translate("greeting"))
	assert.Equal(t, "Hello", c.For(language.English).Translate("greeting"))

	missing := c.Missing([]string{"greeting", "bye", "extra"})
	assert.Equal(t, []string{"bye", "extra"}, missing[language.German])
	assert.Equal(t, []string{"extra"}, missing[language.English])
}

func TestDefault_LanguagesShareKeys(t *testing.T) {
	keys := make([]string, 0, len(english))
	for k := range english {
		keys = append(keys, k)
	}
	for k := range simplifiedChinese {
		keys = append(keys, k)
	}
	assert.Empty(t, Default().Missing(keys))
}

func TestTranslatorFunc(t *testing.T) {
	var tr Translator = TranslatorFunc(func(k string) string { return "<" + k + ">" })
	assert.Equal(t, "<x>", tr.Translate("x"))
	assert.Equal(t, "x", Identity.Translate("x"))
}
