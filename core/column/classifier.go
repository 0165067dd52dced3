// Package column classifies gradebook column names into structural
// descriptors. The grammar is closed: anything it does not recognize is
// reported as unclassified and left to the static legacy table.
package column

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Base is the assessment family encoded in a column name.
type Base string

const (
	BaseEXT   Base = "EXT"   // classwork exercise progress
	BaseLNT   Base = "LNT"   // board-solving participation
	BaseND    Base = "ND"    // homework (on-time flag + K comment + T score)
	BaseSD    Base = "SD"    // test with P/MYP/C sub-scores
	BaseKD    Base = "KD"    // unit summative with P/MYP/C<k> sub-scores
	BaseD     Base = "D"     // diagnostic
	BasePD    Base = "PD"    // dated curriculum practice assessment
	BaseTVARK Base = "TVARK" // notebook organization tracking
	BaseTAIS  Base = "TAIS"  // corrections practice tracking
)

// Subtype is the sub-component tag carried by a column name suffix.
type Subtype string

const (
	SubNone       Subtype = ""
	SubComment    Subtype = "K"   // free-text comment for the same ND instance
	SubScore      Subtype = "T"   // separately scored ND component
	SubPercentage Subtype = "P"
	SubMYP        Subtype = "MYP"
	SubCambridge  Subtype = "C" // with CambridgeIndex
)

// Descriptor is the structural classification of one column name.
// It is ephemeral: used within a single row-processing pass, never persisted.
type Descriptor struct {
	Column  string
	Base    Base
	Number  int
	Subtype Subtype

	// CambridgeIndex distinguishes C sub-score columns: 0 for a bare "C",
	// k for "C<k>". Only meaningful when Subtype == SubCambridge.
	CambridgeIndex int

	// Date is the ISO date embedded in PD column names.
	Date string
}

// BaseColumn is the column name the descriptor's sub-components fold into,
// e.g. "SD1 MYP" -> "SD1". Tracking columns fold into themselves.
func (d *Descriptor) BaseColumn() string {
	switch d.Base {
	case BaseTVARK, BaseTAIS:
		return string(d.Base)
	default:
		return fmt.Sprintf("%s%d", d.Base, d.Number)
	}
}

// HasSubScore reports whether the column carries a numeric sub-component
// that folds into a composite assessment rather than standing alone.
func (d *Descriptor) HasSubScore() bool {
	switch d.Subtype {
	case SubPercentage, SubMYP, SubCambridge, SubScore:
		return true
	}
	return false
}

var (
	extRe = regexp.MustCompile(`^EXT(\d+)$`)
	lntRe = regexp.MustCompile(`^LNT(\d+)$`)
	ndRe  = regexp.MustCompile(`^ND(\d+)(?:\s+([KT]))?$`)
	sdRe  = regexp.MustCompile(`^SD(\d+)(?:\s+(P|MYP|C[12]?))?$`)
	kdRe  = regexp.MustCompile(`^KD(\d+)(?:\s+(P|MYP|C\d*))?$`)
	dRe   = regexp.MustCompile(`^D(\d+)$`)
	pdRe  = regexp.MustCompile(`^PD(\d+)(?:\s+(P|MYP|C))?[_\s](\d{4}-\d{2}-\d{2})$`)
)

// Classify returns the structural descriptor for a column name, or nil if
// the name is outside the grammar. It never fails: callers are expected to
// warn and skip unclassified columns.
//
// Patterns are checked most-specific first so that overlapping prefixes
// (D vs PD, SD sub-tags vs bare SD) resolve deterministically.
func Classify(name string) *Descriptor {
	col := strings.TrimSpace(name)

	if m := extRe.FindStringSubmatch(col); m != nil {
		return &Descriptor{Column: col, Base: BaseEXT, Number: atoi(m[1])}
	}
	if m := lntRe.FindStringSubmatch(col); m != nil {
		return &Descriptor{Column: col, Base: BaseLNT, Number: atoi(m[1])}
	}
	if m := ndRe.FindStringSubmatch(col); m != nil {
		d := &Descriptor{Column: col, Base: BaseND, Number: atoi(m[1])}
		switch m[2] {
		case "K":
			d.Subtype = SubComment
		case "T":
			d.Subtype = SubScore
		}
		return d
	}
	if m := sdRe.FindStringSubmatch(col); m != nil {
		d := &Descriptor{Column: col, Base: BaseSD, Number: atoi(m[1])}
		applyScoreTag(d, m[2])
		return d
	}
	if m := kdRe.FindStringSubmatch(col); m != nil {
		d := &Descriptor{Column: col, Base: BaseKD, Number: atoi(m[1])}
		applyScoreTag(d, m[2])
		return d
	}
	if m := dRe.FindStringSubmatch(col); m != nil {
		return &Descriptor{Column: col, Base: BaseD, Number: atoi(m[1])}
	}
	if col == string(BaseTVARK) {
		return &Descriptor{Column: col, Base: BaseTVARK}
	}
	if col == string(BaseTAIS) {
		return &Descriptor{Column: col, Base: BaseTAIS}
	}
	if m := pdRe.FindStringSubmatch(col); m != nil {
		d := &Descriptor{Column: col, Base: BasePD, Number: atoi(m[1]), Date: m[3]}
		applyScoreTag(d, m[2])
		if d.Subtype == SubNone {
			// A tagless practice column carries the Cambridge component.
			d.Subtype = SubCambridge
		}
		return d
	}
	return nil
}

// applyScoreTag decodes a P/MYP/C<k> suffix into the descriptor.
func applyScoreTag(d *Descriptor, tag string) {
	switch {
	case tag == "":
		d.Subtype = SubNone
	case tag == "P":
		d.Subtype = SubPercentage
	case tag == "MYP":
		d.Subtype = SubMYP
	case strings.HasPrefix(tag, "C"):
		d.Subtype = SubCambridge
		if idx := tag[1:]; idx != "" {
			d.CambridgeIndex = atoi(idx)
		}
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
