package resolve

import "fmt"

// Method identifies which step of the matching chain produced a resolution.
type Method int

const (
	MethodNull       Method = iota // raw value null, NaN or blank
	MethodRegional                 // first segment is a regional term
	MethodExact                    // first segment is an accepted identifier
	MethodAlias                    // first segment is a known alias
	MethodNormalised               // matched after stripping one known prefix
	MethodNoMatch                  // nothing matched
)

var methodNames = [...]string{
	MethodNull:       "null",
	MethodRegional:   "regional",
	MethodExact:      "exact",
	MethodAlias:      "alias",
	MethodNormalised: "normalised",
	MethodNoMatch:    "no_match",
}

// Methods returns every method in chain order.
func Methods() []Method {
	return []Method{MethodNull, MethodRegional, MethodExact, MethodAlias, MethodNormalised, MethodNoMatch}
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Matched reports whether the method resolves to a specific country.
func (m Method) Matched() bool {
	return m == MethodExact || m == MethodAlias || m == MethodNormalised
}

// ParseMethod is the inverse of String.
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("unknown match method %q", s)
}

func (m Method) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(methodNames) {
		return nil, fmt.Errorf("invalid match method %d", int(m))
	}
	return []byte(methodNames[m]), nil
}

func (m *Method) UnmarshalText(b []byte) error {
	parsed, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
