package jsonschema

import (
	"fmt"
	"iter"
	"math"
	"math/big"

	"github.com/corvid-labs/jsonschema/kind"
)

// epsilon is the gap between 1.0 and the next float64.
const epsilon = 2.220446049250313e-16

// newMultipleOf returns the validator for divisor, which must be
// finite and non-zero. exact is the divisor as written in the schema,
// used when the float quotient overflows. Divisors without fractional
// part get a cheaper validator, since integral instances can then be
// checked exactly with math.Mod.
func newMultipleOf(divisor float64, exact *big.Rat) Validator {
	if divisor == math.Trunc(divisor) {
		return &multipleOfInt{divisor: divisor, exact: exact}
	}
	return &multipleOfFloat{divisor: divisor, exact: exact}
}

// multipleOfInt is multipleOf with a divisor that has no fractional part.
type multipleOfInt struct {
	divisor float64
	exact   *big.Rat
}

func (m *multipleOfInt) IsValid(_ *Schema, v any) bool {
	x, ok := toFloat(v)
	if !ok {
		return true
	}
	if math.IsInf(x, 0) {
		return exactMultiple(v, m.exact)
	}
	if x == math.Trunc(x) {
		return math.Mod(x, m.divisor) == 0
	}
	return nearInteger(x / m.divisor)
}

func (m *multipleOfInt) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if m.IsValid(s, v) {
		return noErrors
	}
	x, _ := toFloat(v)
	return fail(v, p, &kind.MultipleOf{Got: x, Want: m.divisor})
}

func (m *multipleOfInt) String() string {
	return fmt.Sprintf("multipleOf: %v", m.divisor)
}

// multipleOfFloat is multipleOf with a divisor that has a fractional part.
type multipleOfFloat struct {
	divisor float64
	exact   *big.Rat
}

func (m *multipleOfFloat) IsValid(_ *Schema, v any) bool {
	x, ok := toFloat(v)
	if !ok {
		return true
	}
	q := x / m.divisor
	if math.IsNaN(fracPart(q)) {
		// quotient overflowed
		return exactMultiple(v, m.exact)
	}
	return nearInteger(q)
}

func (m *multipleOfFloat) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if m.IsValid(s, v) {
		return noErrors
	}
	x, _ := toFloat(v)
	return fail(v, p, &kind.MultipleOf{Got: x, Want: m.divisor})
}

func (m *multipleOfFloat) String() string {
	return fmt.Sprintf("multipleOf: %v", m.divisor)
}

// fracPart returns q modulo 1, in the range [0, 1] for finite q,
// and NaN otherwise.
func fracPart(q float64) float64 {
	r := math.Mod(q, 1)
	if r < 0 {
		r += 1
	}
	return r
}

// nearInteger tells whether q is within one epsilon above an integer.
// Quotients that land just below an integer, such as 0.3/0.1, are
// not accepted.
func nearInteger(q float64) bool {
	r := fracPart(q)
	return r < epsilon && r < 1-epsilon
}

// exactMultiple is the slow path: the instance and the divisor are
// taken as exact fractions and the quotient must be an integer.
// divisor is only read.
func exactMultiple(v any, divisor *big.Rat) bool {
	x, ok := toRat(v)
	if !ok {
		return false
	}
	return x.Quo(x, divisor).IsInt()
}

func compileMultipleOf(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	v := obj["multipleOf"]
	d, ok := number(v)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("multipleOf"), Want: "number", Got: v}
	}
	if d == 0 || math.IsInf(d, 0) {
		return nil, &InvalidKeywordError{Location: sl.kw("multipleOf"), Want: "finite non-zero number", Got: v}
	}
	exact, ok := toRat(v)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw("multipleOf"), Want: "number", Got: v}
	}
	return newMultipleOf(d, exact), nil
}

// number returns v as float64, if v is a json number.
func number(v any) (float64, bool) {
	if jsonType(v) != "number" {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// --

type boundOp int

const (
	opMinimum boundOp = iota
	opMaximum
	opExclusiveMinimum
	opExclusiveMaximum
)

// numberBound is minimum, maximum and their exclusive variants.
// Numbers are compared as float64; when they tie, the exact values
// decide, so that decimals beyond float64 precision compare right.
type numberBound struct {
	op    boundOp
	limit float64
	exact *big.Rat
}

func newNumberBound(op boundOp, v any, limit float64) *numberBound {
	exact, _ := toRat(v)
	return &numberBound{op: op, limit: limit, exact: exact}
}

func (b *numberBound) IsValid(_ *Schema, v any) bool {
	x, ok := toFloat(v)
	if !ok {
		return true
	}
	cmp := 0
	switch {
	case x < b.limit:
		cmp = -1
	case x > b.limit:
		cmp = 1
	case b.exact != nil:
		if r, ok := toRat(v); ok {
			cmp = r.Cmp(b.exact)
		}
	}
	switch b.op {
	case opMinimum:
		return cmp >= 0
	case opMaximum:
		return cmp <= 0
	case opExclusiveMinimum:
		return cmp > 0
	default:
		return cmp < 0
	}
}

func (b *numberBound) Validate(s *Schema, v any, p *Path) iter.Seq[*ValidationError] {
	if b.IsValid(s, v) {
		return noErrors
	}
	x, _ := toFloat(v)
	var k ErrorKind
	switch b.op {
	case opMinimum:
		k = &kind.Minimum{Got: x, Want: b.limit}
	case opMaximum:
		k = &kind.Maximum{Got: x, Want: b.limit}
	case opExclusiveMinimum:
		k = &kind.ExclusiveMinimum{Got: x, Want: b.limit}
	default:
		k = &kind.ExclusiveMaximum{Got: x, Want: b.limit}
	}
	return fail(v, p, k)
}

func (b *numberBound) String() string {
	names := [...]string{"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum"}
	return fmt.Sprintf("%s: %v", names[b.op], b.limit)
}

func compileBound(kw string, op boundOp, obj map[string]any, sl schemaLoc) (Validator, error) {
	v := obj[kw]
	limit, ok := number(v)
	if !ok {
		return nil, &InvalidKeywordError{Location: sl.kw(kw), Want: "number", Got: v}
	}
	return newNumberBound(op, v, limit), nil
}

// draft4 marks the bound exclusive with a boolean sibling.
func exclusiveFlag(obj map[string]any, kw string, sl schemaLoc) (bool, error) {
	if sl.draft().version != 4 {
		return false, nil
	}
	v, ok := obj[kw]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &InvalidKeywordError{Location: sl.kw(kw), Want: "boolean", Got: v}
	}
	return b, nil
}

func compileMinimum(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	excl, err := exclusiveFlag(obj, "exclusiveMinimum", sl)
	if err != nil {
		return nil, err
	}
	if excl {
		return compileBound("minimum", opExclusiveMinimum, obj, sl)
	}
	return compileBound("minimum", opMinimum, obj, sl)
}

func compileMaximum(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	excl, err := exclusiveFlag(obj, "exclusiveMaximum", sl)
	if err != nil {
		return nil, err
	}
	if excl {
		return compileBound("maximum", opExclusiveMaximum, obj, sl)
	}
	return compileBound("maximum", opMaximum, obj, sl)
}

func compileExclusiveMinimum(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	return compileBound("exclusiveMinimum", opExclusiveMinimum, obj, sl)
}

func compileExclusiveMaximum(_ *compileCtx, obj map[string]any, sl schemaLoc) (Validator, error) {
	return compileBound("exclusiveMaximum", opExclusiveMaximum, obj, sl)
}
