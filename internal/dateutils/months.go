package dateutils

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// monthVariants lists German, Estonian, Latin and English spellings and the
// abbreviations seen in the source. Lookups are case-insensitive.
var monthVariants = map[time.Month][]string{
	time.January: {"januar", "jänner", "jan", "jän", "janr", "january",
		"januarius", "ianuarius", "januarii", "ianuarii", "jaanuar"},
	time.February: {"februar", "feb", "febr", "february",
		"februarius", "februarii", "veebruar", "veebr"},
	time.March: {"märz", "maerz", "marz", "mrz", "mär", "march", "mar",
		"martius", "martii", "märts", "marts"},
	time.April: {"april", "apr", "aprilis", "aprill"},
	time.May:   {"mai", "may", "maius", "majus", "maii", "maji"},
	time.June: {"juni", "jun", "june", "junius", "iunius", "junii", "iunii",
		"juuni"},
	time.July: {"juli", "jul", "july", "julius", "iulius", "julii", "iulii",
		"juuli"},
	time.August:    {"august", "aug", "augustus", "augusti"},
	time.September: {"september", "sep", "sept", "septbr", "septembris"},
	time.October: {"oktober", "okt", "october", "oct", "octbr", "octobris",
		"oktoober"},
	time.November: {"november", "nov", "novbr", "novembris"},
	time.December: {"dezember", "dez", "december", "dec", "decbr",
		"decembris", "desember", "des", "detsember", "dets"},
}

var monthLexicon = buildLexicon()

func buildLexicon() map[string]time.Month {
	lex := make(map[string]time.Month)
	for month, names := range monthVariants {
		for _, name := range names {
			lex[foldMonth(name)] = month
		}
	}
	return lex
}

// foldMonth normalises a month token for lexicon lookup. OCR output may carry
// decomposed umlauts, so the token is composed (NFC) before case folding.
func foldMonth(token string) string {
	token = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(token), "."))
	return cases.Fold().String(norm.NFC.String(token))
}

// MonthNumber resolves a raw month token ("Mai", "SEPT", "Juuni") to its
// calendar month.
func MonthNumber(token string) (time.Month, bool) {
	m, ok := monthLexicon[foldMonth(token)]
	return m, ok
}
