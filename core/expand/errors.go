package expand

import "fmt"

// UnsetError reports an expansion of an unset (or null, for the colon
// variants) parameter that the script asked to treat as fatal, either via
// ${name?word} or because nounset is active.
type UnsetError struct {
	Name    string
	Message string
}

func (e *UnsetError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Message)
	}
	return fmt.Sprintf("%s: parameter not set", e.Name)
}

// ExpansionError reports a general expansion failure, like an unusable
// pattern.
type ExpansionError struct {
	Msg string
}

func (e *ExpansionError) Error() string {
	return e.Msg
}

// ArithmeticError reports a malformed or undefined arithmetic evaluation,
// like division by zero or a variable holding a non-numeric value.
type ArithmeticError struct {
	Msg string
}

func (e *ArithmeticError) Error() string {
	return "arithmetic: " + e.Msg
}

func arithErrorf(format string, args ...any) error {
	return &ArithmeticError{Msg: fmt.Sprintf(format, args...)}
}
