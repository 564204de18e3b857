package jsonschema

import "testing"

func TestFormats(t *testing.T) {
	tests := []struct {
		format  string
		valid   []string
		invalid []string
	}{
		{"json-pointer", []string{"", "/a/b", "/a~0b/~1", "/"}, []string{"a", "/a~2"}},
		{"relative-json-pointer", []string{"0", "1/a", "2#", "10/x"}, []string{"", "/a", "01/a", "1a"}},
		{"uuid", []string{"f81d4fae-7dec-11d0-a765-00a0c91e6bf6"}, []string{"f81d4fae7dec11d0a76500a0c91e6bf6", "{f81d4fae-7dec-11d0-a765-00a0c91e6bf6}", "f81d4fae-7dec-11d0-a765-00a0c91e6bfz"}},
		{"duration", []string{"P1Y2M3DT4H5M6S", "P4W", "PT1M", "P1D"}, []string{"P", "PT", "1D", "P1M1Y", "P1H", "PW", "P1.5D"}},
		{"ipv4", []string{"192.168.0.1", "0.0.0.0"}, []string{"256.0.0.1", "1.2.3", "01.2.3.4", "a.b.c.d"}},
		{"ipv6", []string{"::1", "2001:db8::8a2e:370:7334"}, []string{"1.2.3.4", "fe80::1%eth0", "12345::"}},
		{"hostname", []string{"example.com", "a-b.c", "localhost", "example.com."}, []string{"-a.com", "a..b", "a_b.com", "a.b-"}},
		{"email", []string{"a@b.c", "first.last@example.com", `"a b"@example.com`, "a@[127.0.0.1]", "a@[IPv6:::1]"}, []string{"x", "@b.c", ".a@b.c", "a..b@c.d", "a@-b.c", "a@[1.2.3]"}},
		{"date", []string{"2020-02-29"}, []string{"2019-02-29", "2020-1-01", "20200101"}},
		{"time", []string{"12:30:00Z", "12:30:00.123+05:30", "23:59:60Z", "15:59:60-08:00"}, []string{"12:30:00", "24:00:00Z", "12:30:60Z", "12:30:00+5:30", "12:30:00.Z"}},
		{"date-time", []string{"2020-01-01T00:00:00Z", "2020-01-01t12:00:00.5+01:00"}, []string{"2020-01-01 00:00:00Z", "2020-13-01T00:00:00Z", "2020-01-01T00:00:00"}},
		{"uri", []string{"http://example.com/a?b#c", "urn:isbn:0451450523", "http://[::1]:80/"}, []string{"/relative", "http://::1/"}},
		{"uri-reference", []string{"/relative", "#frag", "http://example.com"}, []string{`\\share`, "http://[::1%zone]/"}},
	}
	for _, test := range tests {
		f, ok := formats[test.format]
		if !ok {
			t.Errorf("format %s not registered", test.format)
			continue
		}
		for _, s := range test.valid {
			if err := f.Validate(s); err != nil {
				t.Errorf("%s %q: %v", test.format, s, err)
			}
		}
		for _, s := range test.invalid {
			if err := f.Validate(s); err == nil {
				t.Errorf("%s %q: want error", test.format, s)
			}
		}
		if err := f.Validate(12); err != nil {
			t.Errorf("%s: non-string rejected: %v", test.format, err)
		}
	}
}

func TestFormat_Assertion(t *testing.T) {
	schema := `{"format": "ipv4"}`

	sch := mustCompileSchema(t, schema)
	if !sch.IsValid("x") {
		t.Error("format asserted by default in 2020-12")
	}

	c := NewCompiler()
	c.AssertFormat()
	sch, err := compileSchema(c, schema)
	if err != nil {
		t.Fatal(err)
	}
	errs := collect(sch.Errors("x"))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if got := errs[0].Error(); got != `at '': 'x' is not valid ipv4: expected four decimals` {
		t.Errorf("got %q", got)
	}
}
