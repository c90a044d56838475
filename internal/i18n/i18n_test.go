package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogFallback(t *testing.T) {
	c := New("fr")
	assert.Equal(t, "en", c.Language())
	assert.Equal(t, "Host added", c.T(HostAdded))
}

func TestCatalogFormatting(t *testing.T) {
	assert.Equal(t, "Failed to load hosts: timeout", New("en").T(LoadHostsFailed, "timeout"))
	assert.Equal(t, "成功添加 3 台模拟主机", New("zh").T(SimulatedBatchAdded, 3))
}

func TestCatalogsComplete(t *testing.T) {
	for key := range catalogs[DefaultLanguage] {
		for _, lang := range Languages() {
			_, ok := catalogs[lang][key]
			assert.True(t, ok, "language %s missing key %s", lang, key)
		}
	}
}

func TestUnknownKey(t *testing.T) {
	assert.Equal(t, "nope", New("en").T(Key("nope")))
}
