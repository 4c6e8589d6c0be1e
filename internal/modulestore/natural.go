package modulestore

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// naturalLess orders strings so that digit runs compare by numeric value:
// "2" < "10" and "1.2" < "1.10". Empty strings sort first.
func naturalLess(a, b string) bool {
	return naturalCompare(a, b) < 0
}

func naturalCompare(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				return cmpInt(len(na), len(nb))
			}
			if na != nb {
				return strings.Compare(na, nb)
			}
			continue
		}
		if ca != cb {
			return cmpInt(int(ca), int(cb))
		}
		i++
		j++
	}
	return cmpInt(len(a)-i, len(b)-j)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// sortModules orders modules by kapitel, then unterkapitel. Ties keep discovery order.
func sortModules(mods []models.Module) {
	sort.SliceStable(mods, func(i, j int) bool {
		if c := naturalCompare(mods[i].Kapitel, mods[j].Kapitel); c != 0 {
			return c < 0
		}
		return naturalLess(mods[i].Unterkapitel, mods[j].Unterkapitel)
	})
}
