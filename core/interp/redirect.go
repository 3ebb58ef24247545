package interp

import (
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/poshell/poshell/core/ast"
	"github.com/poshell/poshell/core/expand"
)

func defaultFD(kind ast.RedirectionKind) int {
	switch kind {
	case ast.RedirInput, ast.RedirOpenRW, ast.RedirDuplicateInput, ast.RedirHereDoc:
		return 0
	}
	return 1
}

// createMode is the permission for files the shell creates, after the
// current umask.
func (s *Shell) createMode() os.FileMode {
	return os.FileMode(0o666 &^ s.umask)
}

func (s *Shell) resolvePath(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(s.dir, p)
}

// applyRedirections expands each redirection and applies it to files, a
// clone of the shell's descriptor table. Redirections are applied left to
// right, so a later one for the same descriptor wins. The returned closers
// are the files actually opened here; the caller closes them when the
// redirected command finishes.
func (s *Shell) applyRedirections(files *OpenedFiles, redirs []*ast.Redirection) ([]io.Closer, error) {
	var opened []io.Closer
	for _, r := range redirs {
		fd := r.FD
		if fd == ast.NoFD {
			fd = defaultFD(r.Kind)
		}
		closer, err := s.applyRedirection(files, fd, r)
		if err != nil {
			closeAll(opened)
			return nil, &RedirectionError{Err: err}
		}
		if closer != nil {
			opened = append(opened, closer)
		}
	}
	return opened, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}

func (s *Shell) applyRedirection(files *OpenedFiles, fd int, r *ast.Redirection) (io.Closer, error) {
	if r.Kind == ast.RedirHereDoc {
		body, err := expand.WordToString(s, r.HereDoc)
		if err != nil {
			return nil, err
		}
		if r.StripTabs {
			body = stripLeadingTabs(body)
		}
		files.set(fd, fileFromReader(io.NopCloser(strings.NewReader(body))))
		return nil, nil
	}

	target, err := expand.WordToString(s, r.Target)
	if err != nil {
		return nil, err
	}

	switch r.Kind {
	case ast.RedirDuplicateInput, ast.RedirDuplicateOutput:
		if target == "-" {
			files.remove(fd)
			return nil, nil
		}
		src, err := strconv.Atoi(target)
		if err != nil {
			return nil, fmt.Errorf("%s: bad file descriptor", target)
		}
		file, ok := files.get(src)
		if !ok {
			return nil, fmt.Errorf("%d: bad file descriptor", src)
		}
		files.set(fd, file)
		return nil, nil

	case ast.RedirInput:
		f, err := s.fs.Open(s.resolvePath(target))
		if err != nil {
			return nil, fmt.Errorf("cannot open %s", target)
		}
		files.set(fd, &openFile{reader: f, closer: f})
		return f, nil

	case ast.RedirOutput, ast.RedirOutputClobber, ast.RedirOutputAppend:
		flags := os.O_WRONLY | os.O_CREATE
		switch {
		case r.Kind == ast.RedirOutputAppend:
			flags |= os.O_APPEND
		case r.Kind == ast.RedirOutput && s.opts.NoClobber:
			flags |= os.O_EXCL
		default:
			flags |= os.O_TRUNC
		}
		f, err := s.fs.OpenFile(s.resolvePath(target), flags, s.createMode())
		if err != nil {
			if s.opts.NoClobber && r.Kind == ast.RedirOutput {
				return nil, &NoClobberError{Name: target}
			}
			return nil, fmt.Errorf("cannot create %s", target)
		}
		files.set(fd, &openFile{writer: f, closer: f})
		return f, nil

	case ast.RedirOpenRW:
		f, err := s.fs.OpenFile(s.resolvePath(target), os.O_RDWR|os.O_CREATE, s.createMode())
		if err != nil {
			return nil, fmt.Errorf("cannot open %s", target)
		}
		files.set(fd, &openFile{reader: f, writer: f, closer: f})
		return f, nil
	}
	return nil, fmt.Errorf("unsupported redirection %v", r.Kind)
}

// stripLeadingTabs removes leading tabs from every line of a <<- document.
func stripLeadingTabs(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "\t")
	}
	return strings.Join(lines, "\n")
}
