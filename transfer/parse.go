package transfer

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownFunction is returned by Parse for names it does not recognise.
var ErrUnknownFunction = errors.New("transfer: unknown function")

// aliases are accepted in addition to the canonical names.
var aliases = map[string]Function{
	"rec709":  Bt709,
	"gamma22": Bt470M,
	"rec601":  Bt601,
	"linear":  Linear,
	"pq":      Smpte2084,
	"st2084":  Smpte2084,
	"hlg":     Bt2100Hlg,
	"bt2020":  Bt2020_10bit,
	"scene":   LinearScene,
}

var byName = func() map[string]Function {
	m := make(map[string]Function, int(functionCount)+len(aliases))
	for f := Function(0); f < functionCount; f++ {
		m[foldName(curves[f].name)] = f
	}
	for k, f := range aliases {
		m[foldName(k)] = f
	}
	return m
}()

// foldName case-folds s and drops separators so "bt2020-10bit",
// "BT2020_10BIT" and "Bt2020 10bit" compare equal.
func foldName(s string) string {
	s = cases.Fold().String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.':
			return -1
		}
		return r
	}, s)
}

// Parse looks up a transfer function by name, ignoring case and
// separators. Common aliases such as "pq" and "hlg" are accepted.
func Parse(name string) (Function, error) {
	if f, ok := byName[foldName(name)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
}
