package viewmodels

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format of date inputs (<input type="date">).
const DateLayout = "2006-01-02"

// binder reads only allow-listed keys from submitted form values; anything
// else in the submission is ignored.
type binder struct {
	values  url.Values
	allowed map[string]bool
	errs    FieldErrors
}

func newBinder(values url.Values, allowed []string) *binder {
	set := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		set[name] = true
	}
	return &binder{values: values, allowed: set}
}

func (b *binder) raw(field string) (string, bool) {
	if !b.allowed[field] {
		return "", false
	}
	if _, ok := b.values[field]; !ok {
		return "", false
	}
	return strings.TrimSpace(b.values.Get(field)), true
}

func (b *binder) str(field string) string {
	v, _ := b.raw(field)
	return v
}

func (b *binder) integer(field string) int {
	v, ok := b.raw(field)
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.errs.Add(field, "The value '"+v+"' is not valid for "+field+".")
		return 0
	}
	return n
}

func (b *binder) optionalInt(field string) *int {
	v, ok := b.raw(field)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		b.errs.Add(field, "The value '"+v+"' is not valid for "+field+".")
		return nil
	}
	return &n
}

func (b *binder) date(field string) time.Time {
	v, ok := b.raw(field)
	if !ok || v == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		b.errs.Add(field, "The value '"+v+"' is not valid for "+field+".")
		return time.Time{}
	}
	return t
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// secret returns the untrimmed value; passwords keep their whitespace.
func (b *binder) secret(field string) string {
	if !b.allowed[field] {
		return ""
	}
	return b.values.Get(field)
}
