package filters

import "strings"

// Tone is the colour rule applied to the resolved product status.
type Tone int

// Status tones.
const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

var (
	negativeWords = []string{"inativo", "indisponível", "indisponivel", "bloqueado"}
	positiveWords = []string{"ativo", "disponível", "disponivel", "liberado"}
)

// ClassifyStatus maps a catalog status to its tone.
// Negative words are checked first: "inativo" and "indisponível" contain their positive forms.
func ClassifyStatus(status string) Tone {
	s := strings.ToLower(status)
	for _, w := range negativeWords {
		if strings.Contains(s, w) {
			return ToneNegative
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(s, w) {
			return TonePositive
		}
	}
	return ToneNeutral
}
