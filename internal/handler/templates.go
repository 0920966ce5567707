package handler

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/form"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"year": func() int {
			return time.Now().Year()
		},
		"formatCents": FormatCents,
		"join":        strings.Join,
		"fieldValue": func(values map[form.Field]string, name string) string {
			return values[form.Field(name)]
		},
	}
}

// FormatCents formats an amount in centavos as Brazilian reais, e.g.
// 123456 -> "R$ 1.234,56".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	reais := strconv.FormatInt(cents/100, 10)
	// Group thousands with dots
	var grouped strings.Builder
	for i, d := range reais {
		if i > 0 && (len(reais)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	frac := cents % 100
	out := sign + "R$ " + grouped.String() + ","
	if frac < 10 {
		out += "0"
	}
	return out + strconv.FormatInt(frac, 10)
}
