package interp

import "io"

// openFile is one entry in a file descriptor table. An entry opened from a
// real file is both readable and writable; pipe ends and captured buffers
// have only one side.
type openFile struct {
	reader io.Reader
	writer io.Writer
	closer io.Closer
}

func (f *openFile) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func fileFromReader(r io.Reader) *openFile {
	f := &openFile{reader: r}
	if c, ok := r.(io.Closer); ok {
		f.closer = c
	}
	return f
}

func fileFromWriter(w io.Writer) *openFile {
	f := &openFile{writer: w}
	if c, ok := w.(io.Closer); ok {
		f.closer = c
	}
	return f
}

// OpenedFiles maps shell file descriptors to their open files. Cloning
// shares the entries; closing is the responsibility of whoever opened the
// file, tracked outside the table.
type OpenedFiles struct {
	table map[int]*openFile
}

// NewStdFiles builds a descriptor table with the usual 0, 1, and 2.
func NewStdFiles(stdin io.Reader, stdout, stderr io.Writer) *OpenedFiles {
	return &OpenedFiles{table: map[int]*openFile{
		0: {reader: stdin},
		1: {writer: stdout},
		2: {writer: stderr},
	}}
}

func (f *OpenedFiles) get(fd int) (*openFile, bool) {
	file, ok := f.table[fd]
	return file, ok
}

func (f *OpenedFiles) set(fd int, file *openFile) {
	f.table[fd] = file
}

func (f *OpenedFiles) remove(fd int) {
	delete(f.table, fd)
}

func (f *OpenedFiles) Clone() *OpenedFiles {
	table := make(map[int]*openFile, len(f.table))
	for fd, file := range f.table {
		table[fd] = file
	}
	return &OpenedFiles{table: table}
}

// Reader returns the read side of fd, or nil when fd is closed or
// write-only.
func (f *OpenedFiles) Reader(fd int) io.Reader {
	if file, ok := f.table[fd]; ok {
		return file.reader
	}
	return nil
}

// Writer returns the write side of fd, or nil when fd is closed or
// read-only.
func (f *OpenedFiles) Writer(fd int) io.Writer {
	if file, ok := f.table[fd]; ok {
		return file.writer
	}
	return nil
}

func (f *OpenedFiles) Stdin() io.Reader  { return f.Reader(0) }
func (f *OpenedFiles) Stdout() io.Writer { return f.Writer(1) }
func (f *OpenedFiles) Stderr() io.Writer { return f.Writer(2) }

// SetStdin replaces fd 0, for pipelines.
func (f *OpenedFiles) SetStdin(r io.Reader) {
	f.table[0] = &openFile{reader: r}
}

// SetStdout replaces fd 1, for pipelines and command substitution.
func (f *OpenedFiles) SetStdout(w io.Writer) {
	f.table[1] = &openFile{writer: w}
}
