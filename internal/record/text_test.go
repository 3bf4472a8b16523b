// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText(" a\n\tb   c "))
	assert.Equal(t, "", NormalizeText(" \n "))
}

func TestTrimText(t *testing.T) {
	assert.Equal(t, "a b c", TrimText(" a\tb c ", 10))
	assert.Equal(t, "ab…", TrimText("ab cdef", 4))
	assert.Equal(t, "中文…", TrimText("中文字符", 3))
}
