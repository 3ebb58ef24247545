package interp

// Options holds the set builtin's single-letter options.
type Options struct {
	AllExport bool // -a: mark assigned variables for export
	ErrExit   bool // -e: exit on command failure
	NoGlob    bool // -f: disable pathname expansion
	NoClobber bool // -C: refuse > on existing files
	NoUnset   bool // -u: expanding unset parameters is an error
	XTrace    bool // -x: trace commands to standard error
	Verbose   bool // -v: echo input lines as they are read
}

var optionLetters = []struct {
	letter byte
	name   string
	field  func(*Options) *bool
}{
	{'a', "allexport", func(o *Options) *bool { return &o.AllExport }},
	{'e', "errexit", func(o *Options) *bool { return &o.ErrExit }},
	{'f', "noglob", func(o *Options) *bool { return &o.NoGlob }},
	{'C', "noclobber", func(o *Options) *bool { return &o.NoClobber }},
	{'u', "nounset", func(o *Options) *bool { return &o.NoUnset }},
	{'x', "xtrace", func(o *Options) *bool { return &o.XTrace }},
	{'v', "verbose", func(o *Options) *bool { return &o.Verbose }},
}

// SetLetter flips an option by its letter, reporting whether the letter is
// known.
func (o *Options) SetLetter(letter byte, on bool) bool {
	for _, opt := range optionLetters {
		if opt.letter == letter {
			*opt.field(o) = on
			return true
		}
	}
	return false
}

// SetName flips an option by its long name, for set -o.
func (o *Options) SetName(name string, on bool) bool {
	for _, opt := range optionLetters {
		if opt.name == name {
			*opt.field(o) = on
			return true
		}
	}
	return false
}

// Flags renders the active option letters for the special parameter $-.
func (o *Options) Flags() string {
	var out []byte
	for _, opt := range optionLetters {
		if *opt.field(o) {
			out = append(out, opt.letter)
		}
	}
	return string(out)
}

// OptionState is one option's name and value, for set -o output.
type OptionState struct {
	Name string
	On   bool
}

// States lists every option with its state in declaration order.
func (o *Options) States() []OptionState {
	out := make([]OptionState, 0, len(optionLetters))
	for _, opt := range optionLetters {
		out = append(out, OptionState{Name: opt.name, On: *opt.field(o)})
	}
	return out
}
