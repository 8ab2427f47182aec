package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/RD-Observatory/internal/domain/geo"
)

// separators per display language: Spanish groups with "." and uses "," as
// the decimal mark; English is the inverse.
type numberSeparators struct {
	group   string
	decimal string
}

var separatorsByLang = map[geo.Language]numberSeparators{
	geo.LangSpanish: {group: ".", decimal: ","},
	geo.LangEnglish: {group: ",", decimal: "."},
}

// formatNumber renders v with thousands grouping and at most one decimal
// place; a trailing ",0" is dropped so counts read as integers.
func formatNumber(v float64, lang geo.Language) string {
	sep, ok := separatorsByLang[lang]
	if !ok {
		sep = separatorsByLang[geo.LangEnglish]
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', 1, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(sep.group)
		}
		b.WriteRune(digit)
	}
	if fracPart != "0" {
		b.WriteString(sep.decimal)
		b.WriteString(fracPart)
	}
	return b.String()
}

// formatPercent renders a signed percentage with one decimal, e.g. "+12,5 %".
func formatPercent(v float64, lang geo.Language) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	sep, ok := separatorsByLang[lang]
	if !ok {
		sep = separatorsByLang[geo.LangEnglish]
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', 1, 64)
	return sign + strings.Replace(s, ".", sep.decimal, 1) + " %"
}

// localized UI fragments the tooltip layer needs.
var uiText = map[geo.Language]struct {
	rankOf       string // fmt: rank, total
	vs           string
	previousYear string
	noComparison string
	averaged     string
	noData       string
}{
	geo.LangSpanish: {
		rankOf:       "%dº de %d",
		vs:           "vs",
		previousYear: "año anterior",
		noComparison: "sin comparación disponible",
		averaged:     "media por país",
		noData:       "sin datos",
	},
	geo.LangEnglish: {
		rankOf:       "%d of %d",
		vs:           "vs",
		previousYear: "previous year",
		noComparison: "no comparison available",
		averaged:     "average per country",
		noData:       "no data",
	},
}

func textFor(lang geo.Language) struct {
	rankOf       string
	vs           string
	previousYear string
	noComparison string
	averaged     string
	noData       string
} {
	if t, ok := uiText[lang]; ok {
		return t
	}
	return uiText[geo.LangEnglish]
}

// rankText renders "3º de 27" / "3 of 27".
func rankText(rank, total int, lang geo.Language) string {
	if rank <= 0 || total <= 0 {
		return ""
	}
	return fmt.Sprintf(textFor(lang).rankOf, rank, total)
}
