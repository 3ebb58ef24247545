package ast

// RedirectionKind identifies the redirection operator.
type RedirectionKind int

const (
	// RedirOutput is ">", create or truncate, refused under noclobber.
	RedirOutput RedirectionKind = iota
	// RedirOutputClobber is ">|", create or truncate regardless of noclobber.
	RedirOutputClobber
	// RedirOutputAppend is ">>".
	RedirOutputAppend
	// RedirInput is "<".
	RedirInput
	// RedirOpenRW is "<>".
	RedirOpenRW
	// RedirDuplicateInput is "<&".
	RedirDuplicateInput
	// RedirDuplicateOutput is ">&".
	RedirDuplicateOutput
	// RedirHereDoc is "<<" or "<<-"; the body was captured at parse time.
	RedirHereDoc
)

func (k RedirectionKind) String() string {
	switch k {
	case RedirOutput:
		return ">"
	case RedirOutputClobber:
		return ">|"
	case RedirOutputAppend:
		return ">>"
	case RedirInput:
		return "<"
	case RedirOpenRW:
		return "<>"
	case RedirDuplicateInput:
		return "<&"
	case RedirDuplicateOutput:
		return ">&"
	case RedirHereDoc:
		return "<<"
	}
	return "?"
}

// NoFD marks a redirection without an explicit file descriptor number; the
// operator's default (0 for input, 1 for output) applies.
const NoFD = -1

// Redirection is one entry of a command's redirection list. Target names the
// file, descriptor digit or "-" for the non-heredoc kinds; HereDoc carries
// the document body for RedirHereDoc, with StripTabs set for "<<-".
type Redirection struct {
	FD        int
	Kind      RedirectionKind
	Target    *Word
	HereDoc   *Word
	StripTabs bool
}
