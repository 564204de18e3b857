package jsonschema

import (
	"errors"
	"fmt"
	"net/netip"
	gourl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format defined specific format.
type Format struct {
	Name string

	// Validate checks if given value is of this format.
	// Values of types the format does not apply to must be accepted.
	Validate func(v any) error
}

// stringFormat makes a Format that applies only to strings.
func stringFormat(name string, check func(s string) error) *Format {
	return &Format{
		Name: name,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			return check(s)
		},
	}
}

var formats = map[string]*Format{}

func init() {
	for name, check := range map[string]func(string) error{
		"json-pointer":          checkJSONPointer,
		"relative-json-pointer": checkRelativeJSONPointer,
		"uuid":                  checkUUID,
		"duration":              checkDuration,
		"ipv4":                  checkIPV4,
		"ipv6":                  checkIPV6,
		"hostname":              checkHostname,
		"email":                 checkEmail,
		"date":                  checkDate,
		"time":                  checkTime,
		"date-time":             checkDateTime,
		"uri":                   checkURI,
		"iri":                   checkURI,
		"uri-reference":         checkURIReference,
		"iri-reference":         checkURIReference,
	} {
		formats[name] = stringFormat(name, check)
	}
}

// see https://www.rfc-editor.org/rfc/rfc6901#section-3
func checkJSONPointer(s string) error {
	if s == "" {
		return nil
	}
	if s[0] != '/' {
		return errors.New("not starting with /")
	}
	for _, tok := range strings.Split(s[1:], "/") {
		if _, ok := unescape(tok); !ok {
			return errors.New("~ must be followed by 0 or 1")
		}
	}
	return nil
}

// see https://tools.ietf.org/html/draft-handrews-relative-json-pointer-01#section-3
func checkRelativeJSONPointer(s string) error {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	switch {
	case n == 0:
		return errors.New("must start with non-negative integer")
	case n > 1 && s[0] == '0':
		return errors.New("starts with zero")
	case s[n:] == "#":
		return nil
	}
	return checkJSONPointer(s[n:])
}

// only the hyphenated 8-4-4-4-12 form is accepted; uuid.Parse
// alone also takes urn and braced forms.
func checkUUID(s string) error {
	if len(s) != 36 {
		return errors.New("must be 36 characters long")
	}
	_, err := uuid.Parse(s)
	return err
}

// see https://datatracker.ietf.org/doc/html/rfc3339#appendix-A
func checkDuration(s string) error {
	s, ok := strings.CutPrefix(s, "P")
	if !ok {
		return errors.New("must start with P")
	}
	if s == "" {
		return errors.New("nothing after P")
	}
	if w, ok := strings.CutSuffix(s, "W"); ok {
		if w == "" || strings.Trim(w, "0123456789") != "" {
			return errors.New("invalid week")
		}
		return nil
	}
	date, clock, hasT := strings.Cut(s, "T")
	if hasT && clock == "" {
		return errors.New("no time elements")
	}
	if err := checkDurationUnits(date, "YMD"); err != nil {
		return err
	}
	return checkDurationUnits(clock, "HMS")
}

func checkDurationUnits(s, units string) error {
	for s != "" {
		digits := len(s) - len(strings.TrimLeft(s, "0123456789"))
		if digits == 0 {
			return errors.New("missing number")
		}
		s = s[digits:]
		if s == "" {
			return errors.New("missing unit")
		}
		i := strings.IndexByte(units, s[0])
		if i == -1 {
			return fmt.Errorf("invalid or out of order unit %q", s[0])
		}
		units, s = units[i+1:], s[1:]
	}
	return nil
}

func checkIPV4(s string) error {
	groups := strings.Split(s, ".")
	if len(groups) != 4 {
		return errors.New("expected four decimals")
	}
	for _, group := range groups {
		if len(group) > 1 && group[0] == '0' {
			return errors.New("leading zeros")
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return err
		}
		if n < 0 || n > 255 {
			return errors.New("decimal must be between 0 and 255")
		}
	}
	return nil
}

func checkIPV6(s string) error {
	if !strings.Contains(s, ":") {
		return errors.New("missing colon")
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return err
	}
	if addr.Zone() != "" {
		return errors.New("zone id is not a part of ipv6 address")
	}
	return nil
}

// see https://en.wikipedia.org/wiki/Hostname#Restrictions_on_valid_host_names
func checkHostname(s string) error {
	s = strings.TrimSuffix(s, ".")
	if len(s) > 253 {
		return errors.New("more than 253 characters long")
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) < 1 || len(label) > 63 {
			return errors.New("label must be 1 to 63 characters long")
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return errors.New("label starts or ends with hyphen")
		}
		for _, ch := range label {
			if !isAlnum(ch) && ch != '-' {
				return fmt.Errorf("invalid character %q", ch)
			}
		}
	}
	return nil
}

func isAlnum(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// see https://en.wikipedia.org/wiki/Email_address
func checkEmail(s string) error {
	if len(s) > 254 {
		return errors.New("more than 254 characters long")
	}
	at := strings.LastIndexByte(s, '@')
	if at == -1 {
		return errors.New("missing @")
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 64 {
		return errors.New("local part more than 64 characters long")
	}

	if len(local) > 1 && local[0] == '"' && local[len(local)-1] == '"' {
		if strings.ContainsAny(local[1:len(local)-1], `\"`) {
			return errors.New("backslash and quote are not allowed within quoted local part")
		}
	} else {
		if local == "" || local[0] == '.' || local[len(local)-1] == '.' {
			return errors.New("local part empty, or starts or ends with dot")
		}
		if strings.Contains(local, "..") {
			return errors.New("consecutive dots")
		}
		for _, ch := range local {
			if !isAlnum(ch) && !strings.ContainsRune(".!#$%&'*+-/=?^_`{|}~", ch) {
				return fmt.Errorf("invalid character %q", ch)
			}
		}
	}

	if ip, ok := strings.CutPrefix(domain, "["); ok {
		ip, ok = strings.CutSuffix(ip, "]")
		if !ok {
			return errors.New("unterminated ip address")
		}
		if v6, ok := strings.CutPrefix(ip, "IPv6:"); ok {
			return checkIPV6(v6)
		}
		return checkIPV4(ip)
	}
	if err := checkHostname(domain); err != nil {
		return fmt.Errorf("invalid domain: %v", err)
	}
	return nil
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
func checkDate(s string) error {
	_, err := time.Parse("2006-01-02", s)
	return err
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
// NOTE: leap seconds are accepted only at 23:59:60 UTC.
func checkTime(s string) error {
	// min: hh:mm:ssZ
	if len(s) < 9 || s[2] != ':' || s[5] != ':' {
		return errors.New("must be of form hh:mm:ss followed by offset")
	}
	var hms [3]int
	for i := range hms {
		n, err := strconv.Atoi(s[i*3 : i*3+2])
		if err != nil {
			return err
		}
		hms[i] = n
	}
	h, m, sec := hms[0], hms[1], hms[2]
	if h > 23 || m > 59 || sec > 60 {
		return errors.New("hour, minute or second out of range")
	}
	s = s[8:]

	// secfrac
	if rest, ok := strings.CutPrefix(s, "."); ok {
		digits := len(rest) - len(strings.TrimLeft(rest, "0123456789"))
		if digits == 0 {
			return errors.New("no digits in second fraction")
		}
		s = rest[digits:]
	}

	// time-offset
	var offset int
	switch {
	case s == "z" || s == "Z":
	case len(s) == 6 && (s[0] == '+' || s[0] == '-') && s[3] == ':':
		oh, err1 := strconv.Atoi(s[1:3])
		om, err2 := strconv.Atoi(s[4:6])
		if err1 != nil || err2 != nil || oh > 23 || om > 59 {
			return errors.New("invalid time offset")
		}
		offset = oh*60 + om
		if s[0] == '+' {
			offset = -offset
		}
	default:
		return errors.New("invalid time offset")
	}

	if sec == 60 {
		utc := ((h*60+m+offset)%(24*60) + 24*60) % (24 * 60)
		if utc != 23*60+59 {
			return errors.New("invalid leap second")
		}
	}
	return nil
}

// see https://datatracker.ietf.org/doc/html/rfc3339#section-5.6
func checkDateTime(s string) error {
	// min: yyyy-mm-ddThh:mm:ssZ
	if len(s) < 20 {
		return errors.New("less than 20 characters long")
	}
	if s[10] != 't' && s[10] != 'T' {
		return errors.New("11th character must be t or T")
	}
	if err := checkDate(s[:10]); err != nil {
		return fmt.Errorf("invalid date element: %v", err)
	}
	if err := checkTime(s[11:]); err != nil {
		return fmt.Errorf("invalid time element: %v", err)
	}
	return nil
}

func parseURL(s string) (*gourl.URL, error) {
	u, err := gourl.Parse(s)
	if err != nil {
		return nil, err
	}
	// net/url does not validate ipv6 host address
	if host := u.Hostname(); strings.Contains(host, ":") {
		if !strings.Contains(u.Host, "[") {
			return nil, errors.New("ipv6 address not enclosed in brackets")
		}
		if err := checkIPV6(host); err != nil {
			return nil, fmt.Errorf("invalid ipv6 address: %v", err)
		}
	}
	return u, nil
}

func checkURI(s string) error {
	u, err := parseURL(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return errors.New("relative url")
	}
	return nil
}

func checkURIReference(s string) error {
	if strings.Contains(s, `\`) {
		return errors.New(`contains \`)
	}
	_, err := parseURL(s)
	return err
}
