package interp

import (
	"fmt"
	"path"
	"strings"
)

const defaultPath = "/usr/local/bin:/usr/bin:/bin"

// lookPath resolves a command name to an executable file. A name with a
// slash bypasses the PATH search. Finding a file that is not executable is
// distinguished from finding nothing, for the 126 versus 127 statuses.
func (s *Shell) lookPath(name string) (string, error) {
	if strings.Contains(name, "/") {
		p := s.resolvePath(name)
		if err := s.checkExecutable(p); err != nil {
			return "", err
		}
		return p, nil
	}

	pathVar := defaultPath
	if v, ok := s.env.Get("PATH"); ok {
		pathVar = v.Value
	}

	foundNonExec := ""
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			dir = "."
		}
		candidate := path.Join(dir, name)
		if !strings.HasPrefix(candidate, "/") {
			candidate = path.Join(s.dir, candidate)
		}
		info, err := s.fs.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 == 0 {
			foundNonExec = candidate
			continue
		}
		return candidate, nil
	}

	if foundNonExec != "" {
		return "", fmt.Errorf("%s: permission denied", name)
	}
	return "", &NotFoundError{Name: name}
}

func (s *Shell) checkExecutable(p string) error {
	info, err := s.fs.Stat(p)
	if err != nil {
		return &NotFoundError{Name: p}
	}
	if info.IsDir() {
		return fmt.Errorf("%s: is a directory", p)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s: permission denied", p)
	}
	return nil
}
