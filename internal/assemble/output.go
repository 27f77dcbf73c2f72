package assemble

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arenadata/dbinit/internal/render"

	log "github.com/sirupsen/logrus"
)

const (
	// InitDir holds the script executed once, on first boot.
	InitDir = "init.d"
	// BootDir holds the script executed on every restart.
	BootDir = "boot.d"
)

func sqlFileName(alias string) string {
	return fmt.Sprintf("000-%s.sql", alias)
}

// output owns the two SQL files of a run. Each is opened at most once and
// always closed; a failed run removes whatever was written.
type output struct {
	initPath, bootPath string
	initFile, bootFile *os.File
	initBuf, bootBuf   *bufio.Writer
}

func openOutput(dir, alias string) (*output, error) {
	o := &output{
		initPath: filepath.Join(dir, InitDir, sqlFileName(alias)),
		bootPath: filepath.Join(dir, BootDir, sqlFileName(alias)),
	}

	var err error
	if o.initFile, err = createFile(o.initPath); err != nil {
		return nil, err
	}
	if o.bootFile, err = createFile(o.bootPath); err != nil {
		_ = o.initFile.Close()
		_ = os.Remove(o.initPath)
		return nil, err
	}

	o.initBuf = bufio.NewWriter(o.initFile)
	o.bootBuf = bufio.NewWriter(o.bootFile)

	return o, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o640)
}

func (o *output) streams() render.Streams {
	return render.Streams{Init: o.initBuf, Boot: o.bootBuf}
}

// Close flushes and closes both files. With ok false the partial output is
// removed, best effort.
func (o *output) Close(ok bool) error {
	var firstErr error
	for _, f := range []struct {
		buf  *bufio.Writer
		file *os.File
		path string
	}{
		{o.initBuf, o.initFile, o.initPath},
		{o.bootBuf, o.bootFile, o.bootPath},
	} {
		if ok {
			if err := f.buf.Flush(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := f.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if !ok {
			if err := os.Remove(f.path); err != nil {
				log.Errorf("remove partial output %s: %v", f.path, err)
			}
		}
	}

	return firstErr
}
