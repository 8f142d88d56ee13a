//
// Copyright 2019 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
//
package eventstream

import (
	"bufio"
	"bytes"
	"io"

	"github.com/golang/glog"
)

// lineReader pulls newline-delimited event records out of an io.Reader.
// A trailing partial line with no terminating '\n' is treated the same way
// tracereader.go treats a truncated final page: as the legitimate end of a
// possibly still-growing file, not as an error. Live recordings are read
// while still being appended to, so the last line on disk may simply not
// have been flushed yet.
type lineReader struct {
	r      *bufio.Reader
	lineNo int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next complete line, with its trailing newline stripped.
// It returns ok == false (and a nil error) at a clean or truncated EOF; a
// non-nil error indicates a genuine read failure from the underlying
// reader.
func (lr *lineReader) next() (line []byte, ok bool, err error) {
	raw, err := lr.r.ReadBytes('\n')
	if err == io.EOF {
		if len(raw) == 0 {
			return nil, false, nil
		}
		glog.Warningf("eventstream: line %d truncated at EOF, ignoring", lr.lineNo+1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	lr.lineNo++
	return bytes.TrimRight(raw, "\n"), true, nil
}
