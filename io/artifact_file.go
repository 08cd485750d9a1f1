package io

import (
	"errors"
	"os"
)

// ArtifactFile wraps one on-disk artifact with offset-tracked
// sequential appends for the write path and positional reads for the
// read path.
type ArtifactFile struct {
	path   string
	file   *os.File
	opened bool

	exists bool

	writeOffset int64
}

func NewArtifactFile(path string) *ArtifactFile {

	_, err := os.Stat(path)

	af := &ArtifactFile{
		path:   path,
		exists: err == nil,
	}

	return af
}

func (f *ArtifactFile) Exists() bool {
	return f.exists
}

func (f *ArtifactFile) Path() string {
	return f.path
}

func (f *ArtifactFile) Open(readOnly bool) (topErr error) {

	var perm os.FileMode = 0644

	if readOnly {
		f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, perm)
	} else {
		f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	}

	if topErr == nil {
		f.opened = true
	}

	return topErr
}

func (f *ArtifactFile) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false
	return f.file.Close()
}

func (f *ArtifactFile) Sync() error {
	if !f.opened {
		return errors.New("file not opened")
	}

	return f.file.Sync()
}

// Append writes at the current sequential position and returns the
// offset the data landed at.
func (f *ArtifactFile) Append(in []byte) (int64, error) {
	if !f.opened {
		return 0, errors.New("file not opened")
	}

	at := f.writeOffset

	writtenBytes, err := f.file.WriteAt(in, at)
	if err != nil {
		return 0, err
	}
	if writtenBytes != len(in) {
		return 0, errors.New("written bytes mismatch")
	}

	f.writeOffset += int64(writtenBytes)

	return at, nil
}

// WriteOffset returns the current sequential append position.
func (f *ArtifactFile) WriteOffset() int64 {
	return f.writeOffset
}

func (f *ArtifactFile) ReadAt(out []byte, off int64, length int) (err error) {
	if !f.opened {
		return errors.New("file not opened")
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out[:length], off)

	if readBytes != length {
		return errors.New("read bytes mismatch")
	}

	return nil
}

func (f *ArtifactFile) Size() (int64, error) {
	if !f.opened {
		return 0, errors.New("file not opened")
	}

	stat, err := f.file.Stat()
	if err != nil {
		return 0, err
	}

	return stat.Size(), nil
}
