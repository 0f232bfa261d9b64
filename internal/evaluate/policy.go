package evaluate

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/invoice-auditor/constants"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Equal applies the comparison tolerance: values match when they are identical after
// removing every whitespace character and folding case. Currency symbols, separators and
// any other formatting still count.
func Equal(expected, actual string) bool {
	return strings.EqualFold(stripSpace(expected), stripSpace(actual))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// PolicyJudge decides verdicts locally with Equal, without a model call.
type PolicyJudge struct{}

// Judge compares every occurrence of each deal-breaker field. Occurrences are paired in
// depth-first order; a missing occurrence compares as the empty string.
func (PolicyJudge) Judge(_ context.Context, invoice string, groundTruth, extracted entity.Record, fields entity.FieldSet) entity.Verdict {
	expected := group(groundTruth.Leaves(fields))
	actual := group(extracted.Leaves(fields))

	v := entity.Verdict{Invoice: invoice, Status: constants.StatusPass}
	for _, f := range fields.Sorted() {
		exp, act := expected[f], actual[f]
		n := max(len(exp), len(act))
		for i := 0; i < n; i++ {
			e, a := at(exp, i), at(act, i)
			if Equal(e, a) {
				continue
			}
			name := f
			if n > 1 {
				name = f + "[" + strconv.Itoa(i) + "]"
			}
			v.Mismatches = append(v.Mismatches, entity.MismatchEntry{Field: name, Expected: e, Actual: a})
		}
	}
	if len(v.Mismatches) > 0 {
		v.Status = constants.StatusMismatch
	}
	return v
}

func group(leaves []entity.Leaf) map[string][]string {
	out := map[string][]string{}
	for _, l := range leaves {
		out[l.Key] = append(out[l.Key], l.Value)
	}
	return out
}

func at(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}
