package student

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mkuprys/gradefold/core"
)

// Name similarity weights. Last names carry more signal: first-name
// collisions are common within a class.
const (
	firstNameWeight = 0.4
	lastNameWeight  = 0.6
)

// AliasTable maps class name -> alias full name -> canonical full name.
// It covers hand-curated shortened names ("Max" for "Maksimas") that no
// edit-distance threshold would accept.
type AliasTable map[string]map[string]string

// Resolver matches spreadsheet names to existing student records: exact
// match first, then the alias table, then fuzzy edit-distance matching.
type Resolver struct {
	aliases   AliasTable
	threshold float64
	gap       float64
	log       core.Logger
}

func NewResolver(aliases AliasTable, threshold, gap float64, log core.Logger) *Resolver {
	if threshold == 0 {
		threshold = 0.9
	}
	return &Resolver{aliases: aliases, threshold: threshold, gap: gap, log: log}
}

// Resolve returns the existing record for (first, last) within the class,
// or nil when no confident match exists and the caller should create one.
// A fuzzy hit is logged as a warning since it usually means a spreadsheet
// typo; an ambiguous fuzzy tie resolves to nil rather than guessing.
func (r *Resolver) Resolve(records []*Record, first, last, class string) *Record {
	first = core.CleanString(first)
	last = core.CleanString(last)
	if first == "" && last == "" {
		return nil
	}

	if rec := findExact(records, first, last, class); rec != nil {
		return rec
	}

	if canonical, ok := r.aliases[class][first+" "+last]; ok {
		cf, cl := splitName(canonical)
		if rec := findExact(records, cf, cl, class); rec != nil {
			r.log.Debug("name resolved through alias table", map[string]interface{}{
				"input": first + " " + last, "canonical": canonical, "class": class,
			})
			return rec
		}
	}

	var best, second *Record
	var bestScore, secondScore float64
	for _, rec := range records {
		if rec.ClassName != class {
			continue
		}
		score := firstNameWeight*similarity(first, rec.FirstName) +
			lastNameWeight*similarity(last, rec.LastName)
		switch {
		case score > bestScore:
			second, secondScore = best, bestScore
			best, bestScore = rec, score
		case score > secondScore:
			second, secondScore = rec, score
		}
	}

	if best == nil || bestScore < r.threshold {
		return nil
	}
	if second != nil && secondScore >= r.threshold && bestScore-secondScore < r.gap {
		r.log.Warn("ambiguous fuzzy name match, leaving unresolved", map[string]interface{}{
			"input": first + " " + last, "class": class,
			"candidates": []string{best.FullName(), second.FullName()},
		})
		return nil
	}
	r.log.Warn("fuzzy name match, possible spreadsheet typo", map[string]interface{}{
		"input": first + " " + last, "matched": best.FullName(),
		"class": class, "score": bestScore,
	})
	return best
}

func findExact(records []*Record, first, last, class string) *Record {
	for _, rec := range records {
		if rec.ClassName == class &&
			strings.EqualFold(rec.FirstName, first) &&
			strings.EqualFold(rec.LastName, last) {
			return rec
		}
	}
	return nil
}

// similarity is normalized Levenshtein similarity over lowercased names.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	if a == b {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
