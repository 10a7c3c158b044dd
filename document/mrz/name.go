package mrz

import "strings"

// Trailing residues the OCR reader produces when it turns a filler into a
// letter. A real name component is never a lone S, E, C or K after the
// surname separator.
var fillerMisreads = []string{"<<KK", "<<S", "<<E", "<<C", "<<K"}

func trimNameNoise(field string) string {
	for {
		if strings.HasSuffix(field, string(Filler)) {
			field = strings.TrimRight(field, string(Filler))
			continue
		}
		trimmed := false
		for _, residue := range fillerMisreads {
			if strings.HasSuffix(field, residue) {
				// keep the "<<" so the next round strips it as filler
				field = field[:len(field)-len(residue)+2]
				trimmed = true
				break
			}
		}
		if !trimmed {
			return field
		}
	}
}

// SplitName decomposes a filler-padded MRZ name field into the surname and
// the given names. The surname is everything before the first "<<"; single
// fillers inside it become spaces. Given names are nil when the field has no
// "<<" separator or nothing follows it.
func SplitName(field string) (surname string, givenNames []string) {
	field = trimNameNoise(field)

	primary, secondary, found := strings.Cut(field, "<<")
	surname = strings.TrimSpace(strings.ReplaceAll(primary, string(Filler), " "))
	if !found {
		return surname, nil
	}

	for _, token := range strings.Split(secondary, string(Filler)) {
		if token != "" {
			givenNames = append(givenNames, token)
		}
	}
	return surname, givenNames
}
