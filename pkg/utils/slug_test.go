package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Jane-Doe":            "jane-doe",
		"Jane Doe":            "jane-doe",
		"  Mary   Anne  ":     "mary-anne",
		"O'Brien-Smith":       "obrien-smith",
		"José-García":         "jos-garca",
		"A---B":               "a-b",
		"!!!-???":             "",
		"":                    "",
		"Anne-Marie O'Neill":  "anne-marie-oneill",
		"van der Berg-Junior": "van-der-berg-junior",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestSlugifyGrammar(t *testing.T) {
	// 非空结果必须是 URL 安全的小写段，且不以 '-' 开头/结尾
	re := regexp.MustCompile(`^[a-z0-9_]+(-[a-z0-9_]+)*$`)
	for _, in := range []string{"Jane Doe", "A  B  C", "x", "Hello, World!"} {
		got := Slugify(in)
		assert.Regexp(t, re, got, "input %q", in)
	}
}
