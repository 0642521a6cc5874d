// Package resultlog writes and reads the textual per-n result log.
//
// Each record is one line:
//
//	n<TAB><TAB>form[<TAB>#rule][<TAB>timestamp]
//
// where form is the index form of Un ("2^3 * 3^1 * 5^1") and timestamp is
// RFC 3339 with nanoseconds. Lines without the optional fields are exactly the
// historical format, so old logs read back unchanged.
package resultlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/mindiv/pkg/factor"
	"github.com/Sumatoshi-tech/mindiv/pkg/rules"
	"github.com/Sumatoshi-tech/mindiv/pkg/sequence"
)

// Field layout.
const (
	fieldSeparator = "\t"
	formSeparator  = "\t\t"
	rulePrefix     = "#"
)

// ErrMalformedRecord is returned for a line that does not parse.
var ErrMalformedRecord = errors.New("malformed result record")

// Record is one logged result.
type Record struct {
	N             int                  `json:"n"                   yaml:"n"`
	Factorization factor.Factorization `json:"factorization"       yaml:"factorization"`
	Rule          rules.Rule           `json:"rule,omitempty"      yaml:"rule,omitempty"`
	Time          time.Time            `json:"time,omitzero"       yaml:"time,omitempty"`
	Partitions    int                  `json:"partitions,omitempty" yaml:"partitions,omitempty"`
}

// FromResult converts a solver result to a record stamped with at.
// A zero at leaves the record untimed.
func FromResult(res sequence.Result, at time.Time) Record {
	return Record{
		N:             res.N,
		Factorization: res.Factorization,
		Rule:          res.Rule,
		Time:          at,
		Partitions:    res.Partitions,
	}
}

// Form returns the index form of Un.
func (r Record) Form() string {
	return r.Factorization.String()
}

// Line renders the record without a trailing newline.
func (r Record) Line() string {
	var b strings.Builder

	b.WriteString(strconv.Itoa(r.N))
	b.WriteString(formSeparator)
	b.WriteString(r.Form())

	if r.Rule != rules.None {
		b.WriteString(fieldSeparator)
		b.WriteString(r.Rule.String())
	}

	if !r.Time.IsZero() {
		b.WriteString(fieldSeparator)
		b.WriteString(r.Time.Format(time.RFC3339Nano))
	}

	return b.String()
}

// ParseLine parses one record line.
func ParseLine(line string) (Record, error) {
	head, rest, ok := strings.Cut(strings.TrimRight(line, "\r\n"), formSeparator)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing separator in %q", ErrMalformedRecord, line)
	}

	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 1 {
		return Record{}, fmt.Errorf("%w: bad index in %q", ErrMalformedRecord, line)
	}

	fields := strings.Split(rest, fieldSeparator)

	f, parseErr := factor.Parse(fields[0])
	if parseErr != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrMalformedRecord, parseErr)
	}

	rec := Record{N: n, Factorization: f}

	for _, field := range fields[1:] {
		switch {
		case field == "":
		case strings.HasPrefix(field, rulePrefix):
			rule, ruleErr := rules.ParseRule(field)
			if ruleErr != nil {
				return Record{}, fmt.Errorf("%w: %w", ErrMalformedRecord, ruleErr)
			}

			rec.Rule = rule
		default:
			at, timeErr := time.Parse(time.RFC3339Nano, field)
			if timeErr != nil {
				return Record{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedRecord, field)
			}

			rec.Time = at
		}
	}

	return rec, nil
}
